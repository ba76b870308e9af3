package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/internal/domain/workflow"
	"sportsadmin.backend/pkg/logger"
	"sportsadmin.backend/pkg/metrics"
	redispkg "sportsadmin.backend/pkg/redis"
	"sportsadmin.backend/pkg/utils"
)

const defaultUploadTimeout = 30 * time.Second

// ActionPayload carries the optional inputs of a workflow action
type ActionPayload struct {
	File         *FileUpload
	DocumentType entities.DocumentType
	ExpiryDate   null.Time
	Decision     entities.ReviewDecision
	// Notes holds review notes or a payment rejection reason.
	Notes string
}

// ActionResult is the committed outcome of a workflow action
type ActionResult struct {
	EntityType entities.EntityType    `json:"entityType"`
	EntityID   uuid.UUID              `json:"entityId"`
	Action     string                 `json:"action"`
	FromStatus string                 `json:"fromStatus"`
	ToStatus   string                 `json:"toStatus"`
	Contract   *entities.Contract     `json:"contract,omitempty"`
	Document   *entities.Document     `json:"document,omitempty"`
	Payment    *entities.Payment      `json:"payment,omitempty"`
	Audit      []*entities.AuditEntry `json:"audit"`

	notices []notice
}

func (r *ActionResult) set(id uuid.UUID, from, to string) {
	r.EntityID = id
	r.FromStatus = from
	r.ToStatus = to
}

// notice is a notification queued until commit. When roles is set the event
// fans out to every active user holding one of them.
type notice struct {
	event entities.NotificationEvent
	roles []entities.UserRole
}

var (
	adminRoles      = []entities.UserRole{entities.UserRoleAdmin, entities.UserRoleSuperAdmin}
	legalRoles      = []entities.UserRole{entities.UserRoleLegalRep}
	accountantRoles = []entities.UserRole{entities.UserRoleAccountant}
)

// WorkflowDeps groups the collaborators of the workflow orchestrator
type WorkflowDeps struct {
	UnitOfWork    repositories.UnitOfWork
	Users         repositories.UserRepository
	Contracts     repositories.ContractRepository
	Documents     repositories.DocumentRepository
	Payments      repositories.PaymentRepository
	Audit         repositories.AuditRepository
	Blobs         BlobStore
	Notifier      Notifier
	Locker        EntityLocker
	Observer      TransitionObserver
	UploadTimeout time.Duration
	Now           func() time.Time
}

// WorkflowUsecase is the single entry point for every state change on
// contracts, documents and payments.
type WorkflowUsecase struct {
	uow           repositories.UnitOfWork
	userRepo      repositories.UserRepository
	contractRepo  repositories.ContractRepository
	documentRepo  repositories.DocumentRepository
	paymentRepo   repositories.PaymentRepository
	auditRepo     repositories.AuditRepository
	blobs         BlobStore
	notifier      Notifier
	locker        EntityLocker
	observer      TransitionObserver
	uploadTimeout time.Duration
	now           func() time.Time
}

// NewWorkflowUsecase creates a new workflow orchestrator
func NewWorkflowUsecase(deps WorkflowDeps) *WorkflowUsecase {
	u := &WorkflowUsecase{
		uow:           deps.UnitOfWork,
		userRepo:      deps.Users,
		contractRepo:  deps.Contracts,
		documentRepo:  deps.Documents,
		paymentRepo:   deps.Payments,
		auditRepo:     deps.Audit,
		blobs:         deps.Blobs,
		notifier:      deps.Notifier,
		locker:        deps.Locker,
		observer:      deps.Observer,
		uploadTimeout: deps.UploadTimeout,
		now:           deps.Now,
	}
	if u.uploadTimeout <= 0 {
		u.uploadTimeout = defaultUploadTimeout
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

// Apply dispatches an action by name. For document uploads entityID is the contract id.
func (u *WorkflowUsecase) Apply(ctx context.Context, actor entities.Actor, entityType entities.EntityType, entityID uuid.UUID, action string, payload ActionPayload) (*ActionResult, error) {
	switch entityType {
	case entities.EntityTypeContract:
		switch entities.ContractAction(action) {
		case entities.ContractActionSubmit:
			return u.SubmitContract(ctx, actor, entityID)
		case entities.ContractActionSendForApproval:
			return u.SendContractForApproval(ctx, actor, entityID)
		case entities.ContractActionApprove:
			return u.ApproveContract(ctx, actor, entityID, payload.File)
		case entities.ContractActionUploadSigned:
			return u.UploadSignedContract(ctx, actor, entityID, payload.File)
		case entities.ContractActionComplete:
			return u.CompleteContract(ctx, actor, entityID)
		case entities.ContractActionCancel:
			return u.CancelContract(ctx, actor, entityID)
		}
	case entities.EntityTypeDocument:
		switch entities.DocumentAction(action) {
		case entities.DocumentActionUpload:
			return u.UploadDocument(ctx, actor, entityID, payload.DocumentType, payload.File, payload.ExpiryDate)
		case entities.DocumentActionReview:
			return u.ReviewDocument(ctx, actor, entityID, payload.Decision, payload.Notes)
		}
	case entities.EntityTypePayment:
		switch entities.PaymentAction(action) {
		case entities.PaymentActionUploadBill:
			return u.UploadBill(ctx, actor, entityID, payload.File)
		case entities.PaymentActionApprove:
			return u.ApprovePayment(ctx, actor, entityID)
		case entities.PaymentActionReject:
			return u.RejectPayment(ctx, actor, entityID, payload.Notes)
		case entities.PaymentActionConfirm:
			return u.ConfirmPayment(ctx, actor, entityID, payload.File)
		case entities.PaymentActionCancel:
			return u.CancelPayment(ctx, actor, entityID)
		}
	}
	return nil, domainerrors.Validation(fmt.Sprintf("unknown action %q on %s", action, entityType))
}

// CreateContract stores a draft contract for an active collaborator.
func (u *WorkflowUsecase) CreateContract(ctx context.Context, actor entities.Actor, input entities.CreateContractInput) (*ActionResult, error) {
	perm, _ := workflow.ContractPermission(entities.ContractActionCreate)
	if !perm.Allows(actor, uuid.Nil) {
		return nil, domainerrors.Unauthorized("only legal representatives and above may create contracts")
	}
	if err := workflow.ValidateNewContract(input); err != nil {
		return nil, err
	}

	collaborator, err := u.userRepo.GetByID(ctx, input.CollaboratorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Validation("collaborator not found")
		}
		return nil, err
	}
	if !collaborator.IsActive || collaborator.Role != entities.UserRoleCollaborator {
		return nil, domainerrors.Validation("contracts can only be assigned to active collaborators")
	}

	now := u.now()
	c := &entities.Contract{
		ID:                utils.GenerateUUIDv7(),
		CollaboratorID:    collaborator.ID,
		ContractType:      input.ContractType,
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           null.TimeFromPtr(input.EndDate),
		MonthlyPayment:    null.Float64FromPtr(input.MonthlyPayment),
		PaymentPerSession: null.Float64FromPtr(input.PaymentPerSession),
		Status:            entities.ContractStatusDraft,
		Notes:             input.Notes,
		CreatedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return u.run(ctx, step{
		actor:  actor,
		entity: entities.EntityTypeContract,
		action: string(entities.ContractActionCreate),
		apply: func(txCtx context.Context, _ string, res *ActionResult) error {
			if err := u.contractRepo.Create(txCtx, c); err != nil {
				return err
			}
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypeContract, c.ID, string(entities.ContractActionCreate), "", string(c.Status)); err != nil {
				return err
			}
			res.set(c.ID, "", string(c.Status))
			res.Contract = c
			return nil
		},
	})
}

// UpdateContract edits a contract's details until it is sent for approval.
// The status is left as is and the edit is audited as update.
func (u *WorkflowUsecase) UpdateContract(ctx context.Context, actor entities.Actor, id uuid.UUID, input entities.UpdateContractInput) (*ActionResult, error) {
	perm, _ := workflow.ContractPermission(entities.ContractActionUpdate)
	if !perm.Allows(actor, uuid.Nil) {
		return nil, domainerrors.Unauthorized("only legal representatives and above may edit contracts")
	}

	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypeContract,
		action:  string(entities.ContractActionUpdate),
		lockKey: lockKey(entities.EntityTypeContract, id),
		apply: func(txCtx context.Context, _ string, res *ActionResult) error {
			c, err := u.contractRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if err := workflow.ApplyContractUpdate(c, input); err != nil {
				return err
			}
			c.UpdatedAt = u.now()
			if err := u.contractRepo.UpdateDetails(txCtx, c); err != nil {
				return err
			}
			status := string(c.Status)
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypeContract, c.ID, string(entities.ContractActionUpdate), status, status); err != nil {
				return err
			}
			res.set(c.ID, status, status)
			res.Contract = c
			return nil
		},
	})
}

func (u *WorkflowUsecase) SubmitContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionSubmit, nil)
}

// SendContractForApproval requires every mandatory document to be approved.
func (u *WorkflowUsecase) SendContractForApproval(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionSendForApproval, nil)
}

// ApproveContract attaches the final contract file.
func (u *WorkflowUsecase) ApproveContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *FileUpload) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionApprove, file)
}

// UploadSignedContract activates the contract with the collaborator's signed copy.
func (u *WorkflowUsecase) UploadSignedContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *FileUpload) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionUploadSigned, file)
}

func (u *WorkflowUsecase) CompleteContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionComplete, nil)
}

func (u *WorkflowUsecase) CancelContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.contractAction(ctx, actor, id, entities.ContractActionCancel, nil)
}

func (u *WorkflowUsecase) contractAction(ctx context.Context, actor entities.Actor, id uuid.UUID, action entities.ContractAction, file *FileUpload) (*ActionResult, error) {
	perm, ok := workflow.ContractPermission(action)
	if !ok || perm.System {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown contract action %q", action))
	}
	if !perm.MayAttempt(actor) {
		return nil, domainerrors.Unauthorized(fmt.Sprintf("role %s may not %s contracts", actor.Role, action))
	}

	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypeContract,
		action:  string(action),
		lockKey: lockKey(entities.EntityTypeContract, id),
		file:    file,
		apply: func(txCtx context.Context, fileID string, res *ActionResult) error {
			c, err := u.contractRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if !perm.Allows(actor, c.CollaboratorID) {
				return domainerrors.Unauthorized(fmt.Sprintf("role %s may not %s this contract", actor.Role, action))
			}

			var docs []*entities.Document
			if action == entities.ContractActionSendForApproval {
				if docs, err = u.loadDocuments(txCtx, actor, c.ID, res); err != nil {
					return err
				}
			}

			from, err := u.transitionContract(txCtx, actor, c, action, fileID, docs, res)
			if err != nil {
				return err
			}
			res.set(c.ID, string(from), string(c.Status))
			return nil
		},
	})
}

func (u *WorkflowUsecase) transitionContract(ctx context.Context, actor entities.Actor, c *entities.Contract, action entities.ContractAction, fileID string, docs []*entities.Document, res *ActionResult) (entities.ContractStatus, error) {
	from := c.Status
	now := u.now()
	if err := workflow.ApplyContractTransition(c, action, actor.ID, fileID, docs, now); err != nil {
		return from, err
	}
	c.UpdatedAt = now
	if err := u.contractRepo.Transition(ctx, c, from); err != nil {
		return from, err
	}
	if err := u.record(ctx, res, actor.ID, entities.EntityTypeContract, c.ID, string(action), string(from), string(c.Status)); err != nil {
		return from, err
	}
	res.Contract = c
	res.notices = append(res.notices, contractNotices(c, action)...)
	return from, nil
}

// UploadDocument stores or replaces the contract's document of the given type.
// The first upload on a contract collecting documents moves it to under_review.
func (u *WorkflowUsecase) UploadDocument(ctx context.Context, actor entities.Actor, contractID uuid.UUID, docType entities.DocumentType, file *FileUpload, expiry null.Time) (*ActionResult, error) {
	perm, _ := workflow.DocumentPermission(entities.DocumentActionUpload)
	if !perm.MayAttempt(actor) {
		return nil, domainerrors.Unauthorized("only the contract's collaborator may upload its documents")
	}
	if !docType.Valid() {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown document type %q", docType))
	}
	if file == nil {
		return nil, domainerrors.Validation("document file is required")
	}

	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypeDocument,
		action:  string(entities.DocumentActionUpload),
		lockKey: lockKey(entities.EntityTypeContract, contractID),
		file:    file,
		apply: func(txCtx context.Context, fileID string, res *ActionResult) error {
			c, err := u.contractRepo.GetByID(txCtx, contractID)
			if err != nil {
				return err
			}
			if !perm.Allows(actor, c.CollaboratorID) {
				return domainerrors.Unauthorized("only the contract's collaborator may upload its documents")
			}

			existing, err := u.documentRepo.GetByContractAndType(txCtx, contractID, docType)
			if err != nil {
				if !errors.Is(err, domainerrors.ErrNotFound) {
					return err
				}
				existing = nil
			}
			if existing != nil {
				if err := u.expireIfLapsed(txCtx, actor, existing, res); err != nil {
					return err
				}
			}

			now := u.now()
			if err := workflow.CanUploadDocument(c.Status, existing, now); err != nil {
				return err
			}

			d := existing
			from := entities.DocumentStatusPending
			if d == nil {
				d = &entities.Document{
					ID:           utils.GenerateUUIDv7(),
					ContractID:   contractID,
					DocumentType: docType,
					Status:       entities.DocumentStatusPending,
					CreatedAt:    now,
				}
			} else {
				from = d.Status
			}
			if err := workflow.UploadDocument(d, fileID, file.Name, expiry, actor.ID); err != nil {
				return err
			}
			d.UpdatedAt = now

			if existing == nil {
				err = u.documentRepo.Create(txCtx, d)
			} else {
				err = u.documentRepo.Transition(txCtx, d, from)
			}
			if err != nil {
				return err
			}
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypeDocument, d.ID, string(entities.DocumentActionUpload), string(from), string(d.Status)); err != nil {
				return err
			}
			res.set(d.ID, string(from), string(d.Status))
			res.Document = d
			res.Contract = c
			res.notices = append(res.notices, toRoles(adminRoles, entities.EventDocumentUploaded, entities.EntityTypeDocument, d.ID,
				"Document uploaded", fmt.Sprintf("%s was uploaded for contract %q", d.DocumentType, c.Title)))

			if c.Status == entities.ContractStatusPendingDocuments {
				if _, err := u.transitionContract(txCtx, actor, c, entities.ContractActionAutoReview, "", nil, res); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// ReviewDocument approves or rejects an uploaded document. Rejections need notes.
func (u *WorkflowUsecase) ReviewDocument(ctx context.Context, actor entities.Actor, documentID uuid.UUID, decision entities.ReviewDecision, notes string) (*ActionResult, error) {
	perm, _ := workflow.DocumentPermission(entities.DocumentActionReview)
	if !perm.Allows(actor, uuid.Nil) {
		return nil, domainerrors.Unauthorized("only admins may review documents")
	}

	// Document writes serialize on the owning contract so a review never races a re-upload.
	current, err := u.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypeDocument,
		action:  string(entities.DocumentActionReview),
		lockKey: lockKey(entities.EntityTypeContract, current.ContractID),
		apply: func(txCtx context.Context, _ string, res *ActionResult) error {
			d, err := u.documentRepo.GetByID(txCtx, documentID)
			if err != nil {
				return err
			}
			c, err := u.contractRepo.GetByID(txCtx, d.ContractID)
			if err != nil {
				return err
			}
			if err := workflow.CanReviewDocument(c.Status); err != nil {
				return err
			}
			if err := u.expireIfLapsed(txCtx, actor, d, res); err != nil {
				return err
			}

			from := d.Status
			if err := workflow.ApplyReview(d, decision, notes, actor.ID, u.now()); err != nil {
				return err
			}
			d.UpdatedAt = u.now()
			if err := u.documentRepo.Transition(txCtx, d, from); err != nil {
				return err
			}
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypeDocument, d.ID, string(entities.DocumentActionReview), string(from), string(d.Status)); err != nil {
				return err
			}
			res.set(d.ID, string(from), string(d.Status))
			res.Document = d
			res.Contract = c

			title := "Document approved"
			message := fmt.Sprintf("Your %s was approved", d.DocumentType)
			if d.Status == entities.DocumentStatusRejected {
				title = "Document rejected"
				message = fmt.Sprintf("Your %s was rejected: %s", d.DocumentType, d.ReviewNotes.String)
			}
			res.notices = append(res.notices, toUser(c.CollaboratorID, entities.EventDocumentReviewed, entities.EntityTypeDocument, d.ID, title, message))
			return nil
		},
	})
}

// CreatePayment opens a draft billing cycle on an active contract.
func (u *WorkflowUsecase) CreatePayment(ctx context.Context, actor entities.Actor, input entities.CreatePaymentInput) (*ActionResult, error) {
	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypePayment,
		action:  string(entities.PaymentActionCreate),
		lockKey: lockKey(entities.EntityTypeContract, input.ContractID),
		apply: func(txCtx context.Context, _ string, res *ActionResult) error {
			c, err := u.contractRepo.GetByID(txCtx, input.ContractID)
			if err != nil {
				return err
			}
			if !workflow.CanCreatePayment(actor, c.CollaboratorID) {
				return domainerrors.Unauthorized("only accountants or the contract's collaborator may create payments")
			}
			if err := workflow.ValidateNewPayment(c, input); err != nil {
				return err
			}

			now := u.now()
			p := &entities.Payment{
				ID:          utils.GenerateUUIDv7(),
				ContractID:  c.ID,
				Amount:      input.Amount,
				PaymentDate: input.PaymentDate,
				Description: input.Description,
				Status:      entities.PaymentStatusDraft,
				CreatedBy:   actor.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := u.paymentRepo.Create(txCtx, p); err != nil {
				return err
			}
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypePayment, p.ID, string(entities.PaymentActionCreate), "", string(p.Status)); err != nil {
				return err
			}
			res.set(p.ID, "", string(p.Status))
			res.Payment = p
			res.Contract = c

			if actor.ID == c.CollaboratorID {
				res.notices = append(res.notices, toRoles(accountantRoles, entities.EventPaymentCreated, entities.EntityTypePayment, p.ID,
					"Payment created", fmt.Sprintf("A payment was opened for contract %q", c.Title)))
			} else {
				res.notices = append(res.notices, toUser(c.CollaboratorID, entities.EventPaymentCreated, entities.EntityTypePayment, p.ID,
					"Payment created", "Upload your bill for the new payment"))
			}
			return nil
		},
	})
}

// UploadBill attaches the collaborator's bill and sends the payment for approval.
func (u *WorkflowUsecase) UploadBill(ctx context.Context, actor entities.Actor, id uuid.UUID, file *FileUpload) (*ActionResult, error) {
	return u.paymentAction(ctx, actor, id, entities.PaymentActionUploadBill, file, "")
}

func (u *WorkflowUsecase) ApprovePayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.paymentAction(ctx, actor, id, entities.PaymentActionApprove, nil, "")
}

// RejectPayment sends the bill back to the collaborator with a reason.
func (u *WorkflowUsecase) RejectPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, reason string) (*ActionResult, error) {
	return u.paymentAction(ctx, actor, id, entities.PaymentActionReject, nil, reason)
}

// ConfirmPayment records the payment voucher and marks the payment paid.
func (u *WorkflowUsecase) ConfirmPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, voucher *FileUpload) (*ActionResult, error) {
	return u.paymentAction(ctx, actor, id, entities.PaymentActionConfirm, voucher, "")
}

func (u *WorkflowUsecase) CancelPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*ActionResult, error) {
	return u.paymentAction(ctx, actor, id, entities.PaymentActionCancel, nil, "")
}

func (u *WorkflowUsecase) paymentAction(ctx context.Context, actor entities.Actor, id uuid.UUID, action entities.PaymentAction, file *FileUpload, reason string) (*ActionResult, error) {
	perm, ok := workflow.PaymentPermission(action)
	if !ok {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown payment action %q", action))
	}
	if !perm.MayAttempt(actor) {
		return nil, domainerrors.Unauthorized(fmt.Sprintf("role %s may not %s payments", actor.Role, action))
	}

	return u.run(ctx, step{
		actor:   actor,
		entity:  entities.EntityTypePayment,
		action:  string(action),
		lockKey: lockKey(entities.EntityTypePayment, id),
		file:    file,
		apply: func(txCtx context.Context, fileID string, res *ActionResult) error {
			p, err := u.paymentRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			c, err := u.contractRepo.GetByID(txCtx, p.ContractID)
			if err != nil {
				return err
			}
			if !perm.Allows(actor, c.CollaboratorID) {
				return domainerrors.Unauthorized(fmt.Sprintf("role %s may not %s this payment", actor.Role, action))
			}
			if err := workflow.CanProgressPayment(c.Status, action); err != nil {
				return err
			}

			from := p.Status
			if err := workflow.ApplyPaymentTransition(p, action, actor.ID, fileID, reason); err != nil {
				return err
			}
			p.UpdatedAt = u.now()
			if err := u.paymentRepo.Transition(txCtx, p, from); err != nil {
				return err
			}
			if err := u.record(txCtx, res, actor.ID, entities.EntityTypePayment, p.ID, string(action), string(from), string(p.Status)); err != nil {
				return err
			}
			res.set(p.ID, string(from), string(p.Status))
			res.Payment = p
			res.notices = append(res.notices, paymentNotices(c, p, action)...)
			return nil
		},
	})
}

// loadDocuments returns the contract's documents with lapsed approvals persisted as expired.
func (u *WorkflowUsecase) loadDocuments(ctx context.Context, actor entities.Actor, contractID uuid.UUID, res *ActionResult) ([]*entities.Document, error) {
	docs, err := u.documentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if err := u.expireIfLapsed(ctx, actor, d, res); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (u *WorkflowUsecase) expireIfLapsed(ctx context.Context, actor entities.Actor, d *entities.Document, res *ActionResult) error {
	now := u.now()
	if !d.IsLapsed(now) {
		return nil
	}
	from := d.Status
	next, err := workflow.ExpireDocument(d, now)
	if err != nil {
		return err
	}
	d.Status = next
	d.UpdatedAt = now
	if err := u.documentRepo.Transition(ctx, d, from); err != nil {
		return err
	}
	return u.record(ctx, res, actor.ID, entities.EntityTypeDocument, d.ID, string(entities.DocumentActionExpire), string(from), string(next))
}

func (u *WorkflowUsecase) record(ctx context.Context, res *ActionResult, actorID uuid.UUID, entity entities.EntityType, id uuid.UUID, action, from, to string) error {
	entry := &entities.AuditEntry{
		ID:         utils.GenerateUUIDv7(),
		ActorID:    actorID,
		EntityType: entity,
		EntityID:   id,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Timestamp:  u.now(),
	}
	if err := u.auditRepo.Append(ctx, entry); err != nil {
		return err
	}
	res.Audit = append(res.Audit, entry)
	return nil
}

type step struct {
	actor   entities.Actor
	entity  entities.EntityType
	action  string
	lockKey string
	file    *FileUpload
	apply   func(ctx context.Context, fileID string, res *ActionResult) error
}

// run executes one action: store the file, lock the entity, apply inside a
// transaction, then notify. Side effects only happen after commit.
func (u *WorkflowUsecase) run(ctx context.Context, s step) (res *ActionResult, err error) {
	start := time.Now()
	defer func() { u.observe(ctx, s, start, err) }()

	fileID := ""
	if s.file != nil {
		if fileID, err = u.storeFile(ctx, s.file); err != nil {
			return nil, err
		}
	}

	release, err := u.acquire(ctx, s.lockKey)
	if err != nil {
		u.discardFile(ctx, fileID)
		return nil, err
	}

	res = &ActionResult{EntityType: s.entity, Action: s.action}
	err = u.uow.Do(u.uow.WithLock(ctx), func(txCtx context.Context) error {
		return s.apply(txCtx, fileID, res)
	})
	release(context.WithoutCancel(ctx))
	if err != nil {
		u.discardFile(ctx, fileID)
		return nil, err
	}

	u.dispatch(ctx, s.actor.ID, res)
	return res, nil
}

func (u *WorkflowUsecase) storeFile(ctx context.Context, f *FileUpload) (string, error) {
	if f.Reader == nil || f.Size == 0 {
		return "", domainerrors.Validation("uploaded file is empty")
	}
	storeCtx, cancel := context.WithTimeout(ctx, u.uploadTimeout)
	defer cancel()

	fileID, err := u.blobs.Store(storeCtx, f.Reader, f.Size, f.ContentType, f.Name)
	if err != nil {
		logger.Error(ctx, "Failed to store workflow file", zap.String("file_name", f.Name), zap.Error(err))
		return "", domainerrors.Infrastructure("file storage unavailable", err)
	}
	return fileID, nil
}

// discardFile removes a stored file whose action did not commit.
func (u *WorkflowUsecase) discardFile(ctx context.Context, fileID string) {
	if fileID == "" {
		return
	}
	if err := u.blobs.Delete(context.WithoutCancel(ctx), fileID); err != nil {
		logger.Warn(ctx, "Failed to delete orphaned file", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (u *WorkflowUsecase) acquire(ctx context.Context, key string) (func(context.Context), error) {
	if u.locker == nil || key == "" {
		return func(context.Context) {}, nil
	}
	release, err := u.locker.Acquire(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, redispkg.ErrLockNotAcquired):
			return nil, domainerrors.InvalidTransition(fmt.Sprintf("%s is being updated by another request", key))
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, domainerrors.Infrastructure("lock service unavailable", err)
		}
	}
	return release, nil
}

func (u *WorkflowUsecase) dispatch(ctx context.Context, actorID uuid.UUID, res *ActionResult) {
	if u.notifier == nil {
		return
	}
	for _, n := range res.notices {
		if len(n.roles) == 0 {
			if n.event.RecipientID != actorID {
				u.notifier.Notify(ctx, n.event)
			}
			continue
		}
		ids, err := u.userRepo.ListIDsByRoles(ctx, n.roles)
		if err != nil {
			logger.Warn(ctx, "Failed to resolve notification recipients", zap.String("event", string(n.event.Type)), zap.Error(err))
			continue
		}
		for _, id := range ids {
			if id == actorID {
				continue
			}
			event := n.event
			event.RecipientID = id
			u.notifier.Notify(ctx, event)
		}
	}
}

func (u *WorkflowUsecase) observe(ctx context.Context, s step, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
		logger.Info(ctx, "Workflow action applied",
			zap.String("entity", string(s.entity)),
			zap.String("action", s.action),
			zap.String("actor_id", s.actor.ID.String()),
		)
	case domainerrors.StatusOf(err) < http.StatusInternalServerError:
		outcome = metrics.OutcomeRejected
		logger.Debug(ctx, "Workflow action rejected", zap.String("entity", string(s.entity)), zap.String("action", s.action), zap.Error(err))
	default:
		outcome = metrics.OutcomeError
		logger.Error(ctx, "Workflow action failed", zap.String("entity", string(s.entity)), zap.String("action", s.action), zap.Error(err))
	}
	if u.observer != nil {
		u.observer.ObserveTransition(string(s.entity), s.action, outcome, start)
	}
}

func lockKey(entity entities.EntityType, id uuid.UUID) string {
	return string(entity) + ":" + id.String()
}

func toUser(recipient uuid.UUID, eventType entities.NotificationEventType, entity entities.EntityType, id uuid.UUID, title, message string) notice {
	return notice{event: entities.NotificationEvent{
		Type:        eventType,
		RecipientID: recipient,
		EntityType:  entity,
		EntityID:    id,
		Title:       title,
		Message:     message,
	}}
}

func toRoles(roles []entities.UserRole, eventType entities.NotificationEventType, entity entities.EntityType, id uuid.UUID, title, message string) notice {
	n := toUser(uuid.Nil, eventType, entity, id, title, message)
	n.roles = roles
	return n
}

func contractNotices(c *entities.Contract, action entities.ContractAction) []notice {
	ct := entities.EntityTypeContract
	switch action {
	case entities.ContractActionSubmit:
		return []notice{toUser(c.CollaboratorID, entities.EventContractSubmitted, ct, c.ID,
			"Documents required", fmt.Sprintf("Upload the required documents for %q", c.Title))}
	case entities.ContractActionAutoReview:
		return []notice{toRoles(adminRoles, entities.EventContractUnderReview, ct, c.ID,
			"Contract under review", fmt.Sprintf("Documents are arriving for %q", c.Title))}
	case entities.ContractActionSendForApproval:
		return []notice{toRoles(legalRoles, entities.EventContractPendingApproval, ct, c.ID,
			"Contract pending approval", fmt.Sprintf("%q is ready for approval", c.Title))}
	case entities.ContractActionApprove:
		return []notice{toUser(c.CollaboratorID, entities.EventContractApproved, ct, c.ID,
			"Contract approved", fmt.Sprintf("Sign and upload %q", c.Title))}
	case entities.ContractActionUploadSigned:
		return []notice{toRoles(adminRoles, entities.EventContractActive, ct, c.ID,
			"Contract signed", fmt.Sprintf("%q is now active", c.Title))}
	case entities.ContractActionComplete:
		return []notice{toUser(c.CollaboratorID, entities.EventContractCompleted, ct, c.ID,
			"Contract completed", fmt.Sprintf("%q was completed", c.Title))}
	case entities.ContractActionCancel:
		return []notice{toUser(c.CollaboratorID, entities.EventContractCancelled, ct, c.ID,
			"Contract cancelled", fmt.Sprintf("%q was cancelled", c.Title))}
	}
	return nil
}

func paymentNotices(c *entities.Contract, p *entities.Payment, action entities.PaymentAction) []notice {
	pt := entities.EntityTypePayment
	switch action {
	case entities.PaymentActionUploadBill:
		return []notice{toRoles(accountantRoles, entities.EventPaymentBillUploaded, pt, p.ID,
			"Bill uploaded", fmt.Sprintf("A bill for %q is waiting for approval", c.Title))}
	case entities.PaymentActionApprove:
		return []notice{toUser(c.CollaboratorID, entities.EventPaymentApproved, pt, p.ID,
			"Bill approved", "Your bill was approved and is queued for payment")}
	case entities.PaymentActionReject:
		return []notice{toUser(c.CollaboratorID, entities.EventPaymentRejected, pt, p.ID,
			"Bill rejected", p.RejectionReason.String)}
	case entities.PaymentActionConfirm:
		return []notice{toUser(c.CollaboratorID, entities.EventPaymentPaid, pt, p.ID,
			"Payment sent", "Your payment voucher is available")}
	case entities.PaymentActionCancel:
		return []notice{toUser(c.CollaboratorID, entities.EventPaymentCancelled, pt, p.ID,
			"Payment cancelled", fmt.Sprintf("A payment for %q was cancelled", c.Title))}
	}
	return nil
}
