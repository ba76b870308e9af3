package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/domain/workflow"
	"sportsadmin.backend/internal/interfaces/http/middleware"
	"sportsadmin.backend/internal/usecases"
	"sportsadmin.backend/pkg/jwt"
	"sportsadmin.backend/pkg/utils"
)

// withActor stands in for AuthMiddleware
func withActor(actor entities.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, actor.ID)
		c.Set(middleware.UserRoleKey, actor.Role)
		c.Next()
	}
}

func newRouter(actor *entities.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if actor != nil {
		r.Use(withActor(*actor))
	}
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with optional fields and one optional file part
func multipartRequest(path string, fields map[string]string, fileField, fileName, content string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		h.Set("Content-Type", "application/pdf")
		part, _ := mw.CreatePart(h)
		_, _ = io.WriteString(part, content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func okResult(entity entities.EntityType, action, from, to string) *usecases.ActionResult {
	return &usecases.ActionResult{EntityType: entity, EntityID: uuid.New(), Action: action, FromStatus: from, ToStatus: to}
}

// fileContent drains an upload so assertions can compare its bytes
func fileContent(f *usecases.FileUpload) string {
	if f == nil || f.Reader == nil {
		return ""
	}
	b, _ := io.ReadAll(f.Reader)
	return string(b)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AuthResponse), args.Error(1)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, token string) (*jwt.TokenPair, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.TokenPair), args.Error(1)
}

func (m *mockAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) CreateUser(ctx context.Context, actor entities.Actor, input *entities.CreateUserInput) (*entities.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context, actor entities.Actor, search string, role *entities.UserRole) ([]*entities.User, error) {
	args := m.Called(ctx, actor, search, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserService) UpdateUser(ctx context.Context, actor entities.Actor, id uuid.UUID, input *entities.UpdateUserInput) (*entities.User, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type mockContractService struct{ mock.Mock }

func (m *mockContractService) GetContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Contract, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contract), args.Error(1)
}

func (m *mockContractService) ListContracts(ctx context.Context, actor entities.Actor, statuses []entities.ContractStatus, page utils.PageRequest) ([]*entities.Contract, utils.PageMeta, error) {
	args := m.Called(ctx, actor, statuses, page)
	if args.Get(0) == nil {
		return nil, utils.PageMeta{}, args.Error(2)
	}
	return args.Get(0).([]*entities.Contract), args.Get(1).(utils.PageMeta), args.Error(2)
}

func (m *mockContractService) History(ctx context.Context, actor entities.Actor, id uuid.UUID) ([]*entities.AuditEntry, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditEntry), args.Error(1)
}

// mockWorkflow implements every workflow interface the handlers consume
type mockWorkflow struct{ mock.Mock }

func (m *mockWorkflow) result(args mock.Arguments) (*usecases.ActionResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.ActionResult), args.Error(1)
}

func (m *mockWorkflow) CreateContract(ctx context.Context, actor entities.Actor, input entities.CreateContractInput) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, input))
}

func (m *mockWorkflow) UpdateContract(ctx context.Context, actor entities.Actor, id uuid.UUID, input entities.UpdateContractInput) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, input))
}

func (m *mockWorkflow) SubmitContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *mockWorkflow) SendContractForApproval(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *mockWorkflow) ApproveContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, file))
}

func (m *mockWorkflow) UploadSignedContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, file))
}

func (m *mockWorkflow) CompleteContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *mockWorkflow) CancelContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *mockWorkflow) UploadDocument(ctx context.Context, actor entities.Actor, contractID uuid.UUID, docType entities.DocumentType, file *usecases.FileUpload, expiry null.Time) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, contractID, docType, file, expiry))
}

func (m *mockWorkflow) ReviewDocument(ctx context.Context, actor entities.Actor, documentID uuid.UUID, decision entities.ReviewDecision, notes string) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, documentID, decision, notes))
}

func (m *mockWorkflow) CreatePayment(ctx context.Context, actor entities.Actor, input entities.CreatePaymentInput) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, input))
}

func (m *mockWorkflow) UploadBill(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, file))
}

func (m *mockWorkflow) ApprovePayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *mockWorkflow) RejectPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, reason string) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, reason))
}

func (m *mockWorkflow) ConfirmPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, voucher *usecases.FileUpload) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id, voucher))
}

func (m *mockWorkflow) CancelPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error) {
	return m.result(m.Called(ctx, actor, id))
}

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Requirements(contractType entities.ContractType) (workflow.Requirements, error) {
	args := m.Called(contractType)
	return args.Get(0).(workflow.Requirements), args.Error(1)
}

func (m *mockDocumentService) ListByContract(ctx context.Context, actor entities.Actor, contractID uuid.UUID) ([]*entities.Document, error) {
	args := m.Called(ctx, actor, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *mockDocumentService) Readiness(ctx context.Context, actor entities.Actor, contractID uuid.UUID) (*workflow.ReadinessReport, error) {
	args := m.Called(ctx, actor, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.ReadinessReport), args.Error(1)
}

func (m *mockDocumentService) ListExpiring(ctx context.Context, actor entities.Actor, days int) ([]*entities.Document, error) {
	args := m.Called(ctx, actor, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) GetPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *mockPaymentService) ListPayments(ctx context.Context, actor entities.Actor, contractID *uuid.UUID, statuses []entities.PaymentStatus, page utils.PageRequest) ([]*entities.Payment, utils.PageMeta, error) {
	args := m.Called(ctx, actor, contractID, statuses, page)
	if args.Get(0) == nil {
		return nil, utils.PageMeta{}, args.Error(2)
	}
	return args.Get(0).([]*entities.Payment), args.Get(1).(utils.PageMeta), args.Error(2)
}
