package signature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openmes/batch-record-api/internal/signature/model"
	"github.com/openmes/batch-record-api/internal/system/constants"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
)

type mockSignatureStore struct {
	mock.Mock
}

func (m *mockSignatureStore) GetByID(ctx context.Context, signatureID string) (*model.ElectronicSignature, error) {
	args := m.Called(ctx, signatureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ElectronicSignature), args.Error(1)
}

func (m *mockSignatureStore) Create(tx dbmodel.TxInterface, signature *model.ElectronicSignature) error {
	args := m.Called(tx, signature)
	return args.Error(0)
}

func (m *mockSignatureStore) Consume(tx dbmodel.TxInterface, signatureID string, consumedAt int64) error {
	args := m.Called(tx, signatureID, consumedAt)
	return args.Error(0)
}

func validSignature() *model.ElectronicSignature {
	batchRecordID := "br-1"
	return &model.ElectronicSignature{
		SignatureID:   "sig-1",
		UserID:        "user-1",
		EntityType:    constants.EntityTypeSection,
		EntityID:      "sec-a",
		Action:        constants.ActionCompleteSection,
		BatchRecordID: &batchRecordID,
		PayloadHash:   model.HashPayload([]byte(`{"field":"value"}`)),
		SignedAt:      1700000000000,
	}
}

func sectionExpectation() model.Expectation {
	return model.Expectation{
		UserID:        "user-1",
		EntityType:    constants.EntityTypeSection,
		EntityID:      "sec-a",
		Action:        constants.ActionCompleteSection,
		BatchRecordID: "br-1",
	}
}

func TestVerify_Valid(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(validSignature(), nil)

	sig, svcErr := Verify(context.Background(), store, "sig-1", sectionExpectation())

	require.Nil(t, svcErr)
	require.NotNil(t, sig)
	assert.Equal(t, "sig-1", sig.SignatureID)
}

func TestVerify_MissingSignatureID(t *testing.T) {
	store := new(mockSignatureStore)

	_, svcErr := Verify(context.Background(), store, "", sectionExpectation())

	require.NotNil(t, svcErr)
	assert.Equal(t, "invalid_signature", svcErr.Error)
	store.AssertNotCalled(t, "GetByID")
}

func TestVerify_NotFound(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-x").Return(nil, model.ErrSignatureNotFound)

	_, svcErr := Verify(context.Background(), store, "sig-x", sectionExpectation())

	require.NotNil(t, svcErr)
	assert.Equal(t, "invalid_signature", svcErr.Error)
}

func TestVerify_AlreadyConsumed(t *testing.T) {
	sig := validSignature()
	consumedAt := int64(1700000001000)
	sig.ConsumedAt = &consumedAt

	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(sig, nil)

	_, svcErr := Verify(context.Background(), store, "sig-1", sectionExpectation())

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "already been used")
}

func TestVerify_WrongUser(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(validSignature(), nil)

	expected := sectionExpectation()
	expected.UserID = "user-2"

	_, svcErr := Verify(context.Background(), store, "sig-1", expected)

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "different user")
}

func TestVerify_WrongAction(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(validSignature(), nil)

	expected := sectionExpectation()
	expected.Action = constants.ActionUnlockSection

	_, svcErr := Verify(context.Background(), store, "sig-1", expected)

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "different action")
}

func TestVerify_WrongEntity(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(validSignature(), nil)

	expected := sectionExpectation()
	expected.EntityID = "sec-b"

	_, svcErr := Verify(context.Background(), store, "sig-1", expected)

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "different entity")
}

func TestVerify_WrongBatchRecord(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("GetByID", mock.Anything, "sig-1").Return(validSignature(), nil)

	expected := sectionExpectation()
	expected.BatchRecordID = "br-2"

	_, svcErr := Verify(context.Background(), store, "sig-1", expected)

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "different batch record")
}

func TestConsumeOp_PropagatesConsumedError(t *testing.T) {
	store := new(mockSignatureStore)
	store.On("Consume", mock.Anything, "sig-1", mock.AnythingOfType("int64")).Return(model.ErrSignatureConsumed)

	op := ConsumeOp(store, "sig-1")
	err := op(nil)

	assert.ErrorIs(t, err, model.ErrSignatureConsumed)
}

func TestHashPayload_Deterministic(t *testing.T) {
	a := model.HashPayload([]byte(`{"a":1}`))
	b := model.HashPayload([]byte(`{"a":1}`))
	c := model.HashPayload([]byte(`{"a":2}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
