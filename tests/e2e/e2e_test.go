package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"keymaster/internal/database"
	"keymaster/internal/domain"
	"keymaster/internal/middleware"
	"keymaster/internal/modules/assistant"
	"keymaster/internal/modules/checkin"
	"keymaster/internal/modules/host"
	"keymaster/internal/modules/verification"
	"keymaster/internal/pkg/ai"
	jwtsvc "keymaster/internal/pkg/jwt"
	"keymaster/internal/repository"
)

// stubProvider stands in for the Gemini adapter. Requests carrying media
// are verification calls; everything else is an assistant question.
type stubProvider struct{}

func (stubProvider) GenerateJSON(_ context.Context, req ai.GenerateRequest) (json.RawMessage, error) {
	if len(req.Media) > 0 {
		return json.RawMessage(`{
			"is_id_valid": true,
			"is_selfie_match": true,
			"guest_name": "Elon Tusk",
			"reason": "Valid driver's license, faces match."
		}`), nil
	}
	return json.RawMessage(`{"answer": "The WiFi password is Sunshine123!."}`), nil
}

func (stubProvider) GenerateSpeech(_ context.Context, _ string) ([]byte, error) {
	return []byte{0x00, 0x01, 0x02, 0x03}, nil
}

type E2ETestSuite struct {
	router       *gin.Engine
	db           *gorm.DB
	reservations *repository.ReservationRepository
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.AutoMigrate(db), "Failed to migrate")

	propertyRepo := repository.NewPropertyRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	hostUserRepo := repository.NewHostUserRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	provider := stubProvider{}
	sessions := checkin.NewManager()

	verificationService := verification.NewService(provider)
	verificationHandler := verification.NewHandler(verificationService)

	assistantService := assistant.NewService(provider, propertyRepo)
	assistantHub := assistant.NewHub()
	assistantHandler := assistant.NewHandler(assistantService, assistantHub, sessions)

	checkinService := checkin.NewService(
		reservationRepo,
		propertyRepo,
		verificationService,
		sessions,
		assistantHub,
		5*time.Second,
	)
	checkinHandler := checkin.NewHandler(checkinService)

	hostService := host.NewService(hostUserRepo, propertyRepo, reservationRepo, jwtService)
	hostHandler := host.NewHandler(hostService, false, 24*time.Hour)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	verificationHandler.RegisterRoutes(v1)
	assistantHandler.RegisterRoutes(v1)
	checkinHandler.RegisterRoutes(v1)
	hostHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.RequireHostSession(jwtService))
	{
		hostHandler.RegisterProtectedRoutes(protected)
	}

	// Seed the fixtures the flows walk through.
	ctx := context.Background()

	villa := &domain.Property{
		Name:          "Paradise Villa",
		Category:      domain.CategoryVilla,
		Address:       "123 Ocean Drive, Miami, FL",
		GoogleMapsURL: "https://maps.example.com/paradise-villa",
		CheckinInstructions: domain.CheckinInstructions{
			WiFiNetwork:  "Villa_WiFi",
			WiFiPassword: "Sunshine123!",
			DoorCode:     "1984",
			Rules:        []string{"No smoking indoors.", "Quiet hours after 10 PM."},
		},
		ContractTemplate: "Agreement for {{guest_name}} at {{property_name}}, {{property_address}}. From {{checkin_date}} to {{checkout_date}}.",
	}
	require.NoError(t, propertyRepo.Create(ctx, villa))

	require.NoError(t, reservationRepo.Create(ctx, &domain.Reservation{
		BookingReference: "AIRBNB-11A",
		PropertyID:       villa.ID,
		GuestName:        "Elon Tusk",
		CheckInDate:      "2024-09-01",
		CheckOutDate:     "2024-09-08",
		Status:           domain.ReservationPending,
	}))

	hash, err := bcrypt.GenerateFromPassword([]byte("host123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, hostUserRepo.Create(ctx, &domain.HostUser{
		Email:        "host@keymaster.com",
		PasswordHash: string(hash),
		Name:         "KeyMaster Host",
	}))

	return &E2ETestSuite{
		router:       r,
		db:           db,
		reservations: reservationRepo,
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

// pngBytes is enough of a PNG for content-type sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func imageForm(t *testing.T, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for name, data := range fields {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s.png"`, name, name))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

// =============================================================================
// Test Flow 1: Guest walks the whole check-in wizard
// =============================================================================

func TestFlow1_GuestCheckinWizard(t *testing.T) {
	suite := setupTestSuite(t)

	var sessionID string

	t.Run("POST /checkin/lookup", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/checkin/lookup", map[string]interface{}{
			"booking_reference": "airbnb-11a",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)

		session := resp.Data["session"].(map[string]interface{})
		sessionID = session["id"].(string)
		require.NotEmpty(t, sessionID)
		assert.Equal(t, "welcome", session["step"])
	})

	t.Run("POST /checkin/sessions/:id/start", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/start", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		session := resp.Data["session"].(map[string]interface{})
		assert.Equal(t, "verification", session["step"])
		assert.Equal(t, "id", session["verify_step"])
	})

	t.Run("POST /checkin/sessions/:id/verification/advance", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/verification/advance",
			map[string]interface{}{"to": "selfie"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		session := resp.Data["session"].(map[string]interface{})
		assert.Equal(t, "selfie", session["verify_step"])
	})

	t.Run("POST /checkin/sessions/:id/verification/submit", func(t *testing.T) {
		body, contentType := imageForm(t, map[string][]byte{
			"id_scan": pngBytes,
			"selfie":  pngBytes,
		})

		req := httptest.NewRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/verification/submit", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// Optimistic advance: the wizard is already on the contract step.
		resp := parseResponse(t, w)
		session := resp.Data["session"].(map[string]interface{})
		assert.Equal(t, "contract", session["step"])

		// The real outcome reconciles into the store shortly after.
		assert.Eventually(t, func() bool {
			res, err := suite.reservations.GetByReference(context.Background(), "AIRBNB-11A")
			if err != nil || res == nil {
				return false
			}
			return res.Status == domain.ReservationVerified && !res.VerificationPending
		}, 3*time.Second, 20*time.Millisecond, "verification outcome never landed in the store")
	})

	t.Run("GET /checkin/sessions/:id/contract", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/checkin/sessions/"+sessionID+"/contract", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		contract := resp.Data["contract"].(string)
		assert.Contains(t, contract, "Elon Tusk")
		assert.Contains(t, contract, "Paradise Villa")
		assert.NotContains(t, contract, "{{guest_name}}")
	})

	t.Run("POST /checkin/sessions/:id/sign", func(t *testing.T) {
		// Missing signature is rejected.
		w := suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/sign",
			map[string]interface{}{"signature_data": "", "agreed": true}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/sign",
			map[string]interface{}{"signature_data": "data:image/png;base64,abc", "agreed": true}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		session := resp.Data["session"].(map[string]interface{})
		assert.Equal(t, "instructions", session["step"])
	})

	t.Run("GET /checkin/sessions/:id/instructions", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/checkin/sessions/"+sessionID+"/instructions", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		instr := resp.Data["instructions"].(map[string]interface{})
		assert.Equal(t, "1984", instr["door_code"])
		assert.Equal(t, "Villa_WiFi", instr["wifi_network"])
	})

	t.Run("POST /checkin/sessions/:id/checkout", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/checkout", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		res, err := suite.reservations.GetByReference(context.Background(), "AIRBNB-11A")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, domain.ReservationCheckedOut, res.Status)

		// Checkout is terminal.
		w = suite.makeRequest("POST", "/api/v1/checkin/sessions/"+sessionID+"/checkout", nil, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFlow2_LookupUnknownReference(t *testing.T) {
	suite := setupTestSuite(t)

	w := suite.makeRequest("POST", "/api/v1/checkin/lookup", map[string]interface{}{
		"booking_reference": "NOPE-404",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := parseResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// =============================================================================
// Test Flow 3: Standalone verification endpoint
// =============================================================================

func TestFlow3_VerificationEndpoint(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("valid document", func(t *testing.T) {
		body, contentType := imageForm(t, map[string][]byte{"id_scan": pngBytes})
		req := httptest.NewRequest("POST", "/api/v1/verification", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		result := resp.Data["result"].(map[string]interface{})
		assert.Equal(t, string(verification.StatusVerified), result["verification_status"])
		assert.Equal(t, "Elon Tusk", result["guest_name"])
	})

	t.Run("missing document", func(t *testing.T) {
		body, contentType := imageForm(t, map[string][]byte{})
		req := httptest.NewRequest("POST", "/api/v1/verification", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// Test Flow 4: Assistant
// =============================================================================

func TestFlow4_Assistant(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /assistant/ask", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/assistant/ask", map[string]interface{}{
			"property_id": "paradise-villa",
			"question":    "What is the WiFi password?",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Contains(t, resp.Data["answer"], "Sunshine123!")
	})

	t.Run("canned check-out answer without a date", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/assistant/ask", map[string]interface{}{
			"property_id": "paradise-villa",
			"question":    "What is the check-out time?",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, assistant.CannedCheckoutAnswer, resp.Data["answer"])
	})

	t.Run("POST /assistant/speech", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/assistant/speech", map[string]interface{}{
			"text": "Welcome to Paradise Villa",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "RIFF"), "expected a WAV payload")
	})
}

// =============================================================================
// Test Flow 5: Host dashboard
// =============================================================================

func TestFlow5_HostDashboard(t *testing.T) {
	suite := setupTestSuite(t)

	var session *http.Cookie

	t.Run("POST /host/login", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/host/login", map[string]interface{}{
			"email":    "host@keymaster.com",
			"password": "host123",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookieName {
				session = c
			}
		}
		require.NotNil(t, session, "login did not set the session cookie")
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/host/login", map[string]interface{}{
			"email":    "host@keymaster.com",
			"password": "wrong",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects requests without a session", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/host/properties", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /host/properties", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/host/properties", nil, session)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		properties := resp.Data["properties"].([]interface{})
		require.Len(t, properties, 1)
		first := properties[0].(map[string]interface{})
		assert.Equal(t, "Paradise Villa", first["name"])
	})

	t.Run("POST /host/properties", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/host/properties", map[string]interface{}{
			"name":      "Medina Riad",
			"category":  "Riad",
			"address":   "12 Derb Chtouka, Marrakech",
			"door_code": "2244",
		}, session)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		// Unknown category is rejected.
		w = suite.makeRequest("POST", "/api/v1/host/properties", map[string]interface{}{
			"name":     "Weird Place",
			"category": "Castle",
			"address":  "nowhere",
		}, session)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET /host/reservations/:ref", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/host/reservations/AIRBNB-11A", nil, session)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		detail := resp.Data["detail"].(map[string]interface{})
		assert.Equal(t, "none", detail["verification_state"])

		reservation := detail["reservation"].(map[string]interface{})
		assert.Equal(t, "Elon Tusk", reservation["guest_name"])

		w = suite.makeRequest("GET", "/api/v1/host/reservations/MISSING", nil, session)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /host/me and logout", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/host/me", nil, session)
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, "host@keymaster.com", resp.Data["email"])

		w = suite.makeRequest("POST", "/api/v1/host/logout", nil, session)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
