package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ozziework/internal/app/server"
	"ozziework/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

// TestOfferToPayslipJourney walks the whole engagement: register both
// parties, issue and accept an offer, log and approve hours, settle into
// a payslip plus instruction file, and confirm payment.
func TestOfferToPayslipJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:        "test",
		StorageDir:         t.TempDir(),
		MigrationsDir:      "../../../../migrations",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		OverdueAfter:       7 * 24 * time.Hour,
		PlatformBankName:   "OzzieWork Pty Ltd",
		PlatformBankBSB:    "012-003",
		PlatformBankAcct:   "00456789",
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	employerEmail := fmt.Sprintf("employer-%d@example.com", suffix)
	travellerEmail := fmt.Sprintf("traveller-%d@example.com", suffix)

	register(t, client, ts.URL, map[string]any{
		"email": employerEmail, "password": "Password123!", "role": "employer",
		"firstName": "Harriet", "lastName": "Grove", "companyName": "Grove Orchards", "abn": "51824753556",
	})
	register(t, client, ts.URL, map[string]any{
		"email": travellerEmail, "password": "Password123!", "role": "traveller",
		"firstName": "Liam", "lastName": "Walker",
	})

	employerToken, _, employerID := login(t, client, ts.URL, employerEmail, "Password123!")
	travellerToken, travellerRefresh, travellerID := login(t, client, ts.URL, travellerEmail, "Password123!")

	// Refresh rotation: the refresh token is single use. The rotated pair
	// works, the spent token does not.
	refreshed := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/refresh", "", map[string]any{
		"refreshToken": travellerRefresh,
	}, http.StatusOK)
	newAccess, _ := refreshed["accessToken"].(string)
	if newAccess == "" {
		t.Fatal("expected refresh to issue a new access token")
	}
	travellerToken = newAccess
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/refresh", "", map[string]any{
		"refreshToken": travellerRefresh,
	}, http.StatusUnauthorized)

	updateProfile(t, client, ts.URL, employerToken, "083-123", "12345678")
	updateProfile(t, client, ts.URL, travellerToken, "083124", "87654321")

	applicationID := seedApplication(t, app, employerID, travellerID)

	// Employer issues the offer.
	offer := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/offer", employerToken, map[string]any{
		"rateType":   "hourly",
		"rateAmount": "20.00",
		"startDate":  "2024-02-05",
	}, http.StatusCreated)
	if offer["status"] != "pending" {
		t.Fatalf("expected pending offer, got %v", offer["status"])
	}

	// Traveller accepts.
	offer = doJSON(t, client, http.MethodPatch, ts.URL+"/api/v1/applications/"+applicationID+"/offer", travellerToken, map[string]any{
		"status": "accepted",
	}, http.StatusOK)
	if offer["status"] != "accepted" {
		t.Fatalf("expected accepted offer, got %v", offer["status"])
	}

	// Traveller logs two days of work.
	sheet := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/applications/"+applicationID+"/timesheet", travellerToken, map[string]any{
		"entries": []map[string]any{
			{"entryDate": "2024-02-05", "hoursWorked": "8"},
			{"entryDate": "2024-02-06", "hoursWorked": "8"},
		},
	}, http.StatusOK)
	if entries, ok := sheet["entries"].([]any); !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", sheet["entries"])
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/timesheet/submit", travellerToken, nil, http.StatusOK)
	sheet = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/timesheet/approve", employerToken, map[string]any{}, http.StatusOK)
	if sheet["status"] != "approved" {
		t.Fatalf("expected approved timesheet, got %v", sheet["status"])
	}

	// Employer settles. 16h at 20.00: gross 320.00, commission 3.20,
	// tax 47.52, net 269.28.
	idemKey := fmt.Sprintf("settle-%d", suffix)
	settled := doJSONWithHeaders(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/payslip", employerToken, nil,
		map[string]string{"Idempotency-Key": idemKey}, http.StatusCreated)
	payslip, ok := settled["payslip"].(map[string]any)
	if !ok {
		t.Fatalf("expected payslip in settlement response, got %v", settled)
	}
	for field, want := range map[string]string{
		"grossAmount":      "320",
		"commissionAmount": "3.2",
		"taxWithheld":      "47.52",
		"netPayment":       "269.28",
		"status":           "processing",
	} {
		if got := fmt.Sprint(payslip[field]); got != want {
			t.Fatalf("payslip %s: expected %s, got %s", field, want, got)
		}
	}
	fileContent, _ := settled["instructionFile"].(string)
	if !strings.HasPrefix(fileContent, "0") {
		t.Fatalf("expected instruction file to start with a header record, got %q", fileContent)
	}
	if got := strings.Count(fileContent, "\n"); got != 5 {
		t.Fatalf("expected 5 newline-terminated records, got %d", got)
	}

	// Retrying with the same idempotency key must not settle twice.
	replay := doJSONWithHeaders(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/payslip", employerToken, nil,
		map[string]string{"Idempotency-Key": idemKey}, http.StatusOK)
	replayPayslip, _ := replay["payslip"].(map[string]any)
	if replayPayslip["id"] != payslip["id"] {
		t.Fatalf("expected replay to return payslip %v, got %v", payslip["id"], replayPayslip["id"])
	}

	// A fresh settle attempt finds no unpaid hours.
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/payslip", employerToken, nil, http.StatusConflict)

	// Employer confirms the bank processed the file.
	confirmed := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/payslip/confirm", employerToken, nil, http.StatusOK)
	if confirmed["status"] != "completed" || confirmed["instructionsStatus"] != "completed" {
		t.Fatalf("expected completed payslip, got %v / %v", confirmed["status"], confirmed["instructionsStatus"])
	}
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/applications/"+applicationID+"/payslip/confirm", employerToken, nil, http.StatusConflict)

	// Both parties received their settlement artifacts.
	travellerDocs := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/documents", travellerToken, nil, http.StatusOK)
	if items, ok := travellerDocs["items"].([]any); !ok || len(items) == 0 {
		t.Fatal("expected traveller payslip document")
	}

	// Admin dry-run sweep: nothing is overdue yet.
	adminToken, _, _ := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	sweep := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/admin/payslips/overdue-sweep?dryRun=true", adminToken, nil, http.StatusOK)
	if marked := fmt.Sprint(sweep["markedOverdue"]); marked != "0" {
		t.Fatalf("expected no overdue payslips, got %v", marked)
	}
}

func register(t *testing.T, client *http.Client, baseURL string, payload map[string]any) {
	t.Helper()
	doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/register", "", payload, http.StatusCreated)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) (string, string, string) {
	t.Helper()
	data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email": email, "password": password,
	}, http.StatusOK)
	token, _ := data["accessToken"].(string)
	refresh, _ := data["refreshToken"].(string)
	user, _ := data["user"].(map[string]any)
	id, _ := user["id"].(string)
	if token == "" || refresh == "" || id == "" {
		t.Fatalf("login for %s returned no token or id", email)
	}
	return token, refresh, id
}

func updateProfile(t *testing.T, client *http.Client, baseURL, token, bsb, account string) {
	t.Helper()
	doJSON(t, client, http.MethodPut, baseURL+"/api/v1/me/profile", token, map[string]any{
		"street": "12 Harvest Rd", "city": "Mildura", "state": "VIC", "postcode": "3500",
		"tfn": "123456782", "bankName": "Demo Mutual", "bankBsb": bsb, "bankAccountNumber": account,
	}, http.StatusOK)
}

// seedApplication provisions the job and application rows directly; job
// posting and applying sit outside the engagement API.
func seedApplication(t *testing.T, app *server.App, employerUserID, travellerID string) string {
	t.Helper()
	ctx := context.Background()

	var employerID string
	if err := app.Pool.QueryRow(ctx, "SELECT id FROM employers WHERE user_id = $1", employerUserID).Scan(&employerID); err != nil {
		t.Fatalf("employer profile lookup failed: %v", err)
	}
	var jobID string
	if err := app.Pool.QueryRow(ctx, `
    INSERT INTO jobs (employer_id, title, status)
    VALUES ($1, 'Orchard picking', 'open')
    RETURNING id
  `, employerID).Scan(&jobID); err != nil {
		t.Fatalf("job insert failed: %v", err)
	}
	var applicationID string
	if err := app.Pool.QueryRow(ctx, `
    INSERT INTO applications (job_id, applicant_id, status)
    VALUES ($1, $2, 'submitted')
    RETURNING id
  `, jobID, travellerID).Scan(&applicationID); err != nil {
		t.Fatalf("application insert failed: %v", err)
	}
	return applicationID
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any, wantStatus int) map[string]any {
	t.Helper()
	return doJSONWithHeaders(t, client, method, url, token, payload, nil, wantStatus)
}

func doJSONWithHeaders(t *testing.T, client *http.Client, method, url, token string, payload any, headers map[string]string, wantStatus int) map[string]any {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, wantStatus, resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid envelope: %v", method, url, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil
	}
	return data
}
