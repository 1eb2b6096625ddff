package timesheet

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlanReplacementInsertUpdateDelete(t *testing.T) {
	existing := []Entry{
		{ID: "e1", EntryDate: day("2024-01-01"), Hours: hours("8"), Notes: "picking"},
		{ID: "e2", EntryDate: day("2024-01-02"), Hours: hours("6"), Notes: ""},
	}
	incoming := []EntryInput{
		{EntryDate: day("2024-01-01"), Hours: hours("7.5"), Notes: "picking"},
		{EntryDate: day("2024-01-03"), Hours: hours("4"), Notes: "packing"},
	}

	plan, err := PlanReplacement(existing, incoming)
	if err != nil {
		t.Fatalf("PlanReplacement returned error: %v", err)
	}
	if len(plan.Insert) != 1 || dateKey(plan.Insert[0].EntryDate) != "2024-01-03" {
		t.Fatalf("unexpected inserts: %+v", plan.Insert)
	}
	if len(plan.Update) != 1 || plan.Update[0].ID != "e1" || !plan.Update[0].Input.Hours.Equal(hours("7.5")) {
		t.Fatalf("unexpected updates: %+v", plan.Update)
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "e2" {
		t.Fatalf("unexpected deletes: %+v", plan.DeleteIDs)
	}
	if !plan.Mutates() {
		t.Fatal("plan should report a mutation")
	}
}

func TestPlanReplacementLockedEntryMatchingPayloadIsNoop(t *testing.T) {
	existing := []Entry{
		{ID: "e1", EntryDate: day("2024-01-01"), Hours: hours("8"), Notes: "picking", IsLocked: true},
	}
	incoming := []EntryInput{
		{EntryDate: day("2024-01-01"), Hours: hours("8"), Notes: "picking"},
	}

	plan, err := PlanReplacement(existing, incoming)
	if err != nil {
		t.Fatalf("PlanReplacement returned error: %v", err)
	}
	if plan.Mutates() {
		t.Fatalf("matching locked entry must be a no-op, got %+v", plan)
	}
}

func TestPlanReplacementLockedEntryDifferingPayloadFails(t *testing.T) {
	existing := []Entry{
		{ID: "e1", EntryDate: day("2024-01-01"), Hours: hours("8"), IsLocked: true},
	}
	incoming := []EntryInput{
		{EntryDate: day("2024-01-01"), Hours: hours("9")},
	}

	_, err := PlanReplacement(existing, incoming)
	if !errors.Is(err, ErrLockedEntryChanged) {
		t.Fatalf("expected ErrLockedEntryChanged, got %v", err)
	}
}

func TestPlanReplacementLockedEntryAbsentFromPayloadIsKept(t *testing.T) {
	existing := []Entry{
		{ID: "e1", EntryDate: day("2024-01-01"), Hours: hours("8"), IsLocked: true},
		{ID: "e2", EntryDate: day("2024-01-02"), Hours: hours("6")},
	}

	plan, err := PlanReplacement(existing, nil)
	if err != nil {
		t.Fatalf("PlanReplacement returned error: %v", err)
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "e2" {
		t.Fatalf("only the unlocked row should be deleted, got %+v", plan.DeleteIDs)
	}
}

func TestPlanReplacementRejectsBadInput(t *testing.T) {
	_, err := PlanReplacement(nil, []EntryInput{{EntryDate: day("2024-01-01"), Hours: hours("0")}})
	if !errors.Is(err, ErrNonPositiveHours) {
		t.Fatalf("expected ErrNonPositiveHours, got %v", err)
	}

	_, err = PlanReplacement(nil, []EntryInput{
		{EntryDate: day("2024-01-01"), Hours: hours("1")},
		{EntryDate: day("2024-01-01"), Hours: hours("2")},
	})
	if !errors.Is(err, ErrDuplicateEntryDate) {
		t.Fatalf("expected ErrDuplicateEntryDate, got %v", err)
	}
}

func TestPlanReplacementIdenticalUnlockedPayloadIsNoop(t *testing.T) {
	existing := []Entry{
		{ID: "e1", EntryDate: day("2024-01-01"), Hours: hours("8"), Notes: "picking"},
	}
	incoming := []EntryInput{
		{EntryDate: day("2024-01-01"), Hours: hours("8.00"), Notes: "picking"},
	}

	plan, err := PlanReplacement(existing, incoming)
	if err != nil {
		t.Fatalf("PlanReplacement returned error: %v", err)
	}
	if plan.Mutates() {
		t.Fatalf("identical payload must not mutate, got %+v", plan)
	}
}
