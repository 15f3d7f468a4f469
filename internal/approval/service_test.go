package approval

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openmes/batch-record-api/internal/approval/model"
	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	signaturemodel "github.com/openmes/batch-record-api/internal/signature/model"
	"github.com/openmes/batch-record-api/internal/system/constants"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/stores"
	templatemodel "github.com/openmes/batch-record-api/internal/template/model"
)

type fakeTx struct{}

func (t *fakeTx) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (t *fakeTx) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (t *fakeTx) Commit() error                                              { return nil }
func (t *fakeTx) Rollback() error                                            { return nil }

type fakeDBClient struct{}

func (c *fakeDBClient) Query(query dbmodel.DBQueryInterface, args ...interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (c *fakeDBClient) Execute(query dbmodel.DBQueryInterface, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (c *fakeDBClient) BeginTx() (dbmodel.TxInterface, error) { return &fakeTx{}, nil }
func (c *fakeDBClient) GetDatabaseType() string               { return "mysql" }

type mockApprovalStore struct {
	mock.Mock
}

func (m *mockApprovalStore) GetByID(ctx context.Context, requestID string) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *mockApprovalStore) GetByIDs(ctx context.Context, requestIDs []string) (map[string]model.ApprovalRequest, error) {
	args := m.Called(ctx, requestIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.ApprovalRequest), args.Error(1)
}

func (m *mockApprovalStore) ListByBatchRecord(ctx context.Context, batchRecordID string) ([]model.ApprovalRequest, error) {
	args := m.Called(ctx, batchRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApprovalRequest), args.Error(1)
}

func (m *mockApprovalStore) CountPendingBySection(ctx context.Context, batchRecordID, sectionID string) (int, error) {
	args := m.Called(ctx, batchRecordID, sectionID)
	return args.Int(0), args.Error(1)
}

func (m *mockApprovalStore) Create(tx dbmodel.TxInterface, request *model.ApprovalRequest) error {
	args := m.Called(tx, request)
	return args.Error(0)
}

func (m *mockApprovalStore) Resolve(tx dbmodel.TxInterface, resolution model.Resolution) error {
	args := m.Called(tx, resolution)
	return args.Error(0)
}

type mockSectionStore struct {
	mock.Mock
}

func (m *mockSectionStore) GetActiveVersion(ctx context.Context, batchRecordID, sectionID string) (*sectionmodel.SectionVersion, error) {
	args := m.Called(ctx, batchRecordID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sectionmodel.SectionVersion), args.Error(1)
}

func (m *mockSectionStore) GetActiveVersions(ctx context.Context, batchRecordID string) ([]sectionmodel.SectionVersion, error) {
	args := m.Called(ctx, batchRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sectionmodel.SectionVersion), args.Error(1)
}

func (m *mockSectionStore) GetLatestTransitionTo(ctx context.Context, batchRecordID, sectionID, status string) (*sectionmodel.SectionStatusAudit, error) {
	args := m.Called(ctx, batchRecordID, sectionID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sectionmodel.SectionStatusAudit), args.Error(1)
}

func (m *mockSectionStore) InsertVersion(tx dbmodel.TxInterface, version *sectionmodel.SectionVersion) error {
	args := m.Called(tx, version)
	return args.Error(0)
}

func (m *mockSectionStore) DeactivateVersion(tx dbmodel.TxInterface, versionID string) error {
	args := m.Called(tx, versionID)
	return args.Error(0)
}

func (m *mockSectionStore) UpdateActiveStatus(tx dbmodel.TxInterface, change sectionmodel.StatusChange) error {
	args := m.Called(tx, change)
	return args.Error(0)
}

func (m *mockSectionStore) InsertStatusAudit(tx dbmodel.TxInterface, audit *sectionmodel.SectionStatusAudit) error {
	args := m.Called(tx, audit)
	return args.Error(0)
}

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) GetTemplateByID(ctx context.Context, templateID string) (*templatemodel.Template, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templatemodel.Template), args.Error(1)
}

func (m *mockTemplateStore) GetSectionsByTemplateID(ctx context.Context, templateID string) ([]templatemodel.Section, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templatemodel.Section), args.Error(1)
}

func (m *mockTemplateStore) GetRulesByTemplateID(ctx context.Context, templateID string) ([]templatemodel.TemplateRule, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templatemodel.TemplateRule), args.Error(1)
}

type mockSignatureStore struct {
	mock.Mock
}

func (m *mockSignatureStore) GetByID(ctx context.Context, signatureID string) (*signaturemodel.ElectronicSignature, error) {
	args := m.Called(ctx, signatureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signaturemodel.ElectronicSignature), args.Error(1)
}

func (m *mockSignatureStore) Create(tx dbmodel.TxInterface, sig *signaturemodel.ElectronicSignature) error {
	args := m.Called(tx, sig)
	return args.Error(0)
}

func (m *mockSignatureStore) Consume(tx dbmodel.TxInterface, signatureID string, consumedAt int64) error {
	args := m.Called(tx, signatureID, consumedAt)
	return args.Error(0)
}

type mockBatchRecordStore struct {
	mock.Mock
}

func (m *mockBatchRecordStore) GetTemplateID(ctx context.Context, batchRecordID string) (string, error) {
	args := m.Called(ctx, batchRecordID)
	return args.String(0), args.Error(1)
}

type serviceFixture struct {
	approvalStore  *mockApprovalStore
	sectionStore   *mockSectionStore
	templateStore  *mockTemplateStore
	signatureStore *mockSignatureStore
	batchStore     *mockBatchRecordStore
	service        ApprovalService
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		approvalStore:  &mockApprovalStore{},
		sectionStore:   &mockSectionStore{},
		templateStore:  &mockTemplateStore{},
		signatureStore: &mockSignatureStore{},
		batchStore:     &mockBatchRecordStore{},
	}
	registry := stores.NewStoreRegistry(&fakeDBClient{},
		f.templateStore, f.batchStore, f.sectionStore, f.approvalStore, f.signatureStore)
	f.service = newApprovalService(registry)
	return f
}

func strPtr(s string) *string { return &s }

func flatSections() []templatemodel.Section {
	return []templatemodel.Section{
		{SectionID: "sec-a", TemplateID: "tpl-1", Name: "A", OrderIndex: 0},
		{SectionID: "sec-b", TemplateID: "tpl-1", Name: "B", OrderIndex: 1},
	}
}

func approvedVersion() *sectionmodel.SectionVersion {
	now := int64(1700000000000)
	user := "qa-1"
	return &sectionmodel.SectionVersion{
		VersionID:     "ver-1",
		BatchRecordID: "br-1",
		SectionID:     "sec-a",
		Version:       2,
		Data:          `{"qty":1}`,
		Status:        sectionmodel.StatusApproved,
		IsActive:      true,
		CreatedTime:   now,
		CreatedBy:     user,
		LockedAt:      &now,
		LockedBy:      &user,
	}
}

func pendingRequest() *model.ApprovalRequest {
	return &model.ApprovalRequest{
		RequestID:     "req-1",
		BatchRecordID: "br-1",
		SectionID:     "sec-a",
		VersionID:     "ver-1",
		RequestType:   model.RequestTypeChangeRequest,
		Status:        model.RequestStatusPending,
		ExistingData:  `{"qty":1}`,
		ProposedData:  `{"qty":9}`,
		RequestedBy:   "user-1",
		RequestedTime: 1700000000000,
	}
}

func reviewSignature(requestID string) *signaturemodel.ElectronicSignature {
	batchRecordID := "br-1"
	return &signaturemodel.ElectronicSignature{
		SignatureID:   "sig-9",
		UserID:        "qa-2",
		EntityType:    constants.EntityTypeApprovalRequest,
		EntityID:      requestID,
		Action:        constants.ActionApproveRequest,
		BatchRecordID: &batchRecordID,
		SignedAt:      1700000001000,
	}
}

func TestCreateRequestFreezesSection(t *testing.T) {
	f := newFixture()

	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(approvedVersion(), nil)
	f.approvalStore.On("CountPendingBySection", mock.Anything, "br-1", "sec-a").Return(0, nil)
	f.approvalStore.On("Create", mock.Anything, mock.AnythingOfType("*model.ApprovalRequest")).Return(nil)
	f.sectionStore.On("UpdateActiveStatus", mock.Anything, mock.MatchedBy(func(change sectionmodel.StatusChange) bool {
		return change.VersionID == "ver-1" &&
			change.Status == sectionmodel.StatusPendingApproval &&
			change.ApprovalRequestID != nil
	})).Return(nil)
	f.sectionStore.On("InsertStatusAudit", mock.Anything, mock.AnythingOfType("*model.SectionStatusAudit")).Return(nil)

	req := model.CreateApprovalRequestRequest{
		SectionID:    "sec-a",
		ProposedData: []byte(`{"qty":9}`),
		RequestedBy:  "user-1",
		Reason:       strPtr("correction after review"),
	}
	request, svcErr := f.service.CreateRequest(context.Background(), "br-1", req)
	require.Nil(t, svcErr)

	assert.Equal(t, model.RequestTypeChangeRequest, request.RequestType)
	assert.Equal(t, model.RequestStatusPending, request.Status)
	assert.Equal(t, `{"qty":1}`, request.ExistingData)
	assert.Equal(t, `{"qty":9}`, request.ProposedData)
	assert.Equal(t, "ver-1", request.VersionID)
	f.sectionStore.AssertExpectations(t)
}

func TestCreateRequestRejectsPendingSection(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusPendingApproval

	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)

	req := model.CreateApprovalRequestRequest{
		SectionID: "sec-a", ProposedData: []byte(`{"qty":9}`), RequestedBy: "user-1",
	}
	_, svcErr := f.service.CreateRequest(context.Background(), "br-1", req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
}

func TestCreateRequestRejectsEditableSection(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusDraft
	current.LockedAt = nil
	current.LockedBy = nil

	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)

	req := model.CreateApprovalRequestRequest{
		SectionID: "sec-a", ProposedData: []byte(`{"qty":9}`), RequestedBy: "user-1",
	}
	_, svcErr := f.service.CreateRequest(context.Background(), "br-1", req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestApproveRequestPromotesProposedData(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusPendingApproval

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)
	f.signatureStore.On("GetByID", mock.Anything, "sig-9").Return(reviewSignature("req-1"), nil)
	f.signatureStore.On("Consume", mock.Anything, "sig-9", mock.Anything).Return(nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)
	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.templateStore.On("GetSectionsByTemplateID", mock.Anything, "tpl-1").Return(flatSections(), nil)
	f.sectionStore.On("GetActiveVersions", mock.Anything, "br-1").Return([]sectionmodel.SectionVersion{*current}, nil)
	f.approvalStore.On("Resolve", mock.Anything, mock.MatchedBy(func(r model.Resolution) bool {
		return r.RequestID == "req-1" && r.Status == model.RequestStatusApproved && r.ReviewedBy == "qa-2"
	})).Return(nil)
	f.sectionStore.On("DeactivateVersion", mock.Anything, "ver-1").Return(nil)

	var inserted *sectionmodel.SectionVersion
	f.sectionStore.On("InsertVersion", mock.Anything, mock.AnythingOfType("*model.SectionVersion")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*sectionmodel.SectionVersion)
		}).Return(nil)
	f.sectionStore.On("InsertStatusAudit", mock.Anything, mock.AnythingOfType("*model.SectionStatusAudit")).Return(nil)

	req := model.ReviewRequest{ReviewedBy: "qa-2", SignatureID: "sig-9"}
	resolved, svcErr := f.service.ApproveRequest(context.Background(), "req-1", req)
	require.Nil(t, svcErr)

	assert.Equal(t, model.RequestStatusApproved, resolved.Status)
	require.NotNil(t, inserted)
	assert.Equal(t, `{"qty":9}`, inserted.Data)
	assert.Equal(t, sectionmodel.StatusApproved, inserted.Status)
	assert.Equal(t, 3, inserted.Version)
	require.NotNil(t, inserted.PreviousVersionID)
	assert.Equal(t, "ver-1", *inserted.PreviousVersionID)
	require.NotNil(t, inserted.ApprovalRequestID)
	assert.Equal(t, "req-1", *inserted.ApprovalRequestID)
}

func TestApproveRequestRejectsSelfApproval(t *testing.T) {
	f := newFixture()

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)

	req := model.ReviewRequest{ReviewedBy: "user-1", SignatureID: "sig-9"}
	_, svcErr := f.service.ApproveRequest(context.Background(), "req-1", req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
	f.signatureStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestApproveRequestAlreadyResolved(t *testing.T) {
	f := newFixture()

	resolved := pendingRequest()
	resolved.Status = model.RequestStatusApproved
	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(resolved, nil)

	req := model.ReviewRequest{ReviewedBy: "qa-2", SignatureID: "sig-9"}
	_, svcErr := f.service.ApproveRequest(context.Background(), "req-1", req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
}

func TestApproveRequestLosesResolveRace(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusPendingApproval

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)
	f.signatureStore.On("GetByID", mock.Anything, "sig-9").Return(reviewSignature("req-1"), nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)
	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.templateStore.On("GetSectionsByTemplateID", mock.Anything, "tpl-1").Return(flatSections(), nil)
	f.sectionStore.On("GetActiveVersions", mock.Anything, "br-1").Return([]sectionmodel.SectionVersion{*current}, nil)
	// Another reviewer resolved the request between the load and the commit.
	f.approvalStore.On("Resolve", mock.Anything, mock.Anything).Return(model.ErrRequestNotPending)

	req := model.ReviewRequest{ReviewedBy: "qa-2", SignatureID: "sig-9"}
	_, svcErr := f.service.ApproveRequest(context.Background(), "req-1", req)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
}

func TestRejectRequestRevertsToPriorStatus(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusPendingApproval
	previous := sectionmodel.StatusCompleted

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)
	f.sectionStore.On("GetLatestTransitionTo", mock.Anything, "br-1", "sec-a", sectionmodel.StatusPendingApproval).
		Return(&sectionmodel.SectionStatusAudit{
			StatusAuditID:  "audit-1",
			BatchRecordID:  "br-1",
			SectionID:      "sec-a",
			VersionID:      "ver-1",
			CurrentStatus:  sectionmodel.StatusPendingApproval,
			PreviousStatus: &previous,
			ActionTime:     1700000000000,
		}, nil)
	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.templateStore.On("GetSectionsByTemplateID", mock.Anything, "tpl-1").Return(flatSections(), nil)
	f.sectionStore.On("GetActiveVersions", mock.Anything, "br-1").Return([]sectionmodel.SectionVersion{*current}, nil)
	f.approvalStore.On("Resolve", mock.Anything, mock.MatchedBy(func(r model.Resolution) bool {
		return r.Status == model.RequestStatusRejected
	})).Return(nil)
	// A COMPLETED section keeps its lock; the request link is cleared.
	f.sectionStore.On("UpdateActiveStatus", mock.Anything, mock.MatchedBy(func(change sectionmodel.StatusChange) bool {
		return change.VersionID == "ver-1" &&
			change.Status == sectionmodel.StatusCompleted &&
			change.LockedAt != nil &&
			change.ApprovalRequestID == nil
	})).Return(nil)
	f.sectionStore.On("InsertStatusAudit", mock.Anything, mock.AnythingOfType("*model.SectionStatusAudit")).Return(nil)

	req := model.ReviewRequest{ReviewedBy: "qa-2", ReviewComments: strPtr("value out of range")}
	resolved, svcErr := f.service.RejectRequest(context.Background(), "req-1", req)
	require.Nil(t, svcErr)

	assert.Equal(t, model.RequestStatusRejected, resolved.Status)
	f.sectionStore.AssertNotCalled(t, "InsertVersion", mock.Anything, mock.Anything)
	f.signatureStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRejectRequestFallsBackToDraft(t *testing.T) {
	f := newFixture()

	current := approvedVersion()
	current.Status = sectionmodel.StatusPendingApproval

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)
	f.sectionStore.On("GetActiveVersion", mock.Anything, "br-1", "sec-a").Return(current, nil)
	f.sectionStore.On("GetLatestTransitionTo", mock.Anything, "br-1", "sec-a", sectionmodel.StatusPendingApproval).
		Return(nil, assert.AnError)
	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.templateStore.On("GetSectionsByTemplateID", mock.Anything, "tpl-1").Return(flatSections(), nil)
	f.sectionStore.On("GetActiveVersions", mock.Anything, "br-1").Return([]sectionmodel.SectionVersion{*current}, nil)
	f.approvalStore.On("Resolve", mock.Anything, mock.Anything).Return(nil)
	f.sectionStore.On("UpdateActiveStatus", mock.Anything, mock.MatchedBy(func(change sectionmodel.StatusChange) bool {
		return change.Status == sectionmodel.StatusDraft && change.LockedAt == nil && change.LockedBy == nil
	})).Return(nil)
	f.sectionStore.On("InsertStatusAudit", mock.Anything, mock.AnythingOfType("*model.SectionStatusAudit")).Return(nil)

	req := model.ReviewRequest{ReviewedBy: "qa-2"}
	_, svcErr := f.service.RejectRequest(context.Background(), "req-1", req)
	require.Nil(t, svcErr)
	f.sectionStore.AssertExpectations(t)
}

func TestGetRequestRendersDiff(t *testing.T) {
	f := newFixture()

	f.approvalStore.On("GetByID", mock.Anything, "req-1").Return(pendingRequest(), nil)

	detail, svcErr := f.service.GetRequest(context.Background(), "req-1")
	require.Nil(t, svcErr)

	assert.Equal(t, "req-1", detail.RequestID)
	assert.Contains(t, detail.Diff, "-")
	assert.Contains(t, detail.Diff, "+")
}

func TestGetRequestNotFound(t *testing.T) {
	f := newFixture()

	f.approvalStore.On("GetByID", mock.Anything, "req-x").Return(nil, errors.New("approval request not found"))

	_, svcErr := f.service.GetRequest(context.Background(), "req-x")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestListRequests(t *testing.T) {
	f := newFixture()

	f.batchStore.On("GetTemplateID", mock.Anything, "br-1").Return("tpl-1", nil)
	f.approvalStore.On("ListByBatchRecord", mock.Anything, "br-1").Return([]model.ApprovalRequest{*pendingRequest()}, nil)

	requests, svcErr := f.service.ListRequests(context.Background(), "br-1")
	require.Nil(t, svcErr)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-1", requests[0].RequestID)
}
