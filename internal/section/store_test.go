package section

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmes/batch-record-api/internal/section/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
)

func newStoreFixture(t *testing.T) (SectionStore, sqlmock.Sqlmock, *sqlx.DB) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return newSectionStore(provider.NewDBClient(sqlxDB, "mysql")), sqlMock, sqlxDB
}

func TestGetActiveVersion(t *testing.T) {
	store, sqlMock, _ := newStoreFixture(t)

	rows := sqlmock.NewRows([]string{
		"VERSION_ID", "BATCH_RECORD_ID", "SECTION_ID", "PARENT_SECTION_ID", "VERSION",
		"DATA", "STATUS", "IS_ACTIVE", "CREATED_TIME", "CREATED_BY",
		"COMPLETED_TIME", "COMPLETED_BY", "LOCKED_AT", "LOCKED_BY",
		"PREVIOUS_VERSION_ID", "APPROVAL_REQUEST_ID",
	}).AddRow(
		"ver-2", "br-1", "sec-a", nil, 2,
		`{"qty":5}`, "COMPLETED", 1, 1700000000000, "user-1",
		1700000001000, "user-1", 1700000001000, "user-1",
		"ver-1", nil,
	)
	sqlMock.ExpectQuery("SELECT (.+) FROM SECTION_VERSION WHERE BATCH_RECORD_ID = \\? AND SECTION_ID = \\? AND IS_ACTIVE = 1").
		WithArgs("br-1", "sec-a").
		WillReturnRows(rows)

	version, err := store.GetActiveVersion(context.Background(), "br-1", "sec-a")
	require.NoError(t, err)

	assert.Equal(t, "ver-2", version.VersionID)
	assert.Equal(t, 2, version.Version)
	assert.Equal(t, "COMPLETED", version.Status)
	assert.True(t, version.IsActive)
	require.NotNil(t, version.PreviousVersionID)
	assert.Equal(t, "ver-1", *version.PreviousVersionID)
	assert.Nil(t, version.ApprovalRequestID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestGetActiveVersionNotFound(t *testing.T) {
	store, sqlMock, _ := newStoreFixture(t)

	sqlMock.ExpectQuery("SELECT (.+) FROM SECTION_VERSION").
		WithArgs("br-1", "sec-x").
		WillReturnRows(sqlmock.NewRows([]string{"VERSION_ID"}))

	_, err := store.GetActiveVersion(context.Background(), "br-1", "sec-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeactivateVersionConflict(t *testing.T) {
	store, sqlMock, sqlxDB := newStoreFixture(t)

	sqlMock.ExpectBegin()
	// Zero affected rows: another transaction already superseded the row.
	sqlMock.ExpectExec("UPDATE SECTION_VERSION SET IS_ACTIVE = 0 WHERE VERSION_ID = \\? AND IS_ACTIVE = 1").
		WithArgs("ver-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := sqlxDB.Begin()
	require.NoError(t, err)

	err = store.DeactivateVersion(dbmodel.NewTx(tx), "ver-1")
	assert.ErrorIs(t, err, model.ErrActiveVersionChanged)
}

func TestDeactivateVersionSucceeds(t *testing.T) {
	store, sqlMock, sqlxDB := newStoreFixture(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("UPDATE SECTION_VERSION SET IS_ACTIVE = 0").
		WithArgs("ver-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := sqlxDB.Begin()
	require.NoError(t, err)

	assert.NoError(t, store.DeactivateVersion(dbmodel.NewTx(tx), "ver-1"))
}

func TestUpdateActiveStatusConflict(t *testing.T) {
	store, sqlMock, sqlxDB := newStoreFixture(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("UPDATE SECTION_VERSION SET STATUS = \\?, LOCKED_AT = \\?, LOCKED_BY = \\?, APPROVAL_REQUEST_ID = \\? WHERE VERSION_ID = \\? AND IS_ACTIVE = 1").
		WithArgs("COMPLETED", nil, nil, nil, "ver-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := sqlxDB.Begin()
	require.NoError(t, err)

	err = store.UpdateActiveStatus(dbmodel.NewTx(tx), model.StatusChange{
		VersionID: "ver-1",
		Status:    "COMPLETED",
	})
	assert.ErrorIs(t, err, model.ErrActiveVersionChanged)
}

func TestUpdateActiveStatusClearsLockColumns(t *testing.T) {
	store, sqlMock, sqlxDB := newStoreFixture(t)

	sqlMock.ExpectBegin()
	// Nil lock fields are written through, clearing the columns.
	sqlMock.ExpectExec("UPDATE SECTION_VERSION SET STATUS").
		WithArgs("APPROVED_FOR_CHANGE", nil, nil, "req-1", "ver-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := sqlxDB.Begin()
	require.NoError(t, err)

	requestID := "req-1"
	err = store.UpdateActiveStatus(dbmodel.NewTx(tx), model.StatusChange{
		VersionID:         "ver-1",
		Status:            "APPROVED_FOR_CHANGE",
		ApprovalRequestID: &requestID,
	})
	assert.NoError(t, err)
}

func TestInsertVersion(t *testing.T) {
	store, sqlMock, sqlxDB := newStoreFixture(t)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO SECTION_VERSION").
		WithArgs("ver-1", "br-1", "sec-a", nil, 1, `{"qty":5}`, "COMPLETED", 1,
			int64(1700000000000), "user-1", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tx, err := sqlxDB.Begin()
	require.NoError(t, err)

	now := int64(1700000000000)
	user := "user-1"
	err = store.InsertVersion(dbmodel.NewTx(tx), &model.SectionVersion{
		VersionID:     "ver-1",
		BatchRecordID: "br-1",
		SectionID:     "sec-a",
		Version:       1,
		Data:          `{"qty":5}`,
		Status:        "COMPLETED",
		IsActive:      true,
		CreatedTime:   now,
		CreatedBy:     user,
		CompletedTime: &now,
		CompletedBy:   &user,
		LockedAt:      &now,
		LockedBy:      &user,
	})
	assert.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestGetHistoryOrdersNewestFirst(t *testing.T) {
	store, sqlMock, _ := newStoreFixture(t)

	rows := sqlmock.NewRows([]string{
		"VERSION_ID", "BATCH_RECORD_ID", "SECTION_ID", "PARENT_SECTION_ID", "VERSION",
		"DATA", "STATUS", "IS_ACTIVE", "CREATED_TIME", "CREATED_BY",
		"COMPLETED_TIME", "COMPLETED_BY", "LOCKED_AT", "LOCKED_BY",
		"PREVIOUS_VERSION_ID", "APPROVAL_REQUEST_ID",
	}).
		AddRow("ver-2", "br-1", "sec-a", nil, 2, `{"qty":5}`, "COMPLETED", 1,
			1700000002000, "user-1", nil, nil, nil, nil, "ver-1", nil).
		AddRow("ver-1", "br-1", "sec-a", nil, 1, `{}`, "DRAFT", 0,
			1700000000000, "system", nil, nil, nil, nil, nil, nil)

	sqlMock.ExpectQuery("SELECT (.+) FROM SECTION_VERSION WHERE BATCH_RECORD_ID = \\? AND SECTION_ID = \\? ORDER BY VERSION DESC").
		WithArgs("br-1", "sec-a").
		WillReturnRows(rows)

	history, err := store.GetHistory(context.Background(), "br-1", "sec-a")
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, 1, history[1].Version)
	assert.False(t, history[1].IsActive)
}

func TestGetLatestTransitionTo(t *testing.T) {
	store, sqlMock, _ := newStoreFixture(t)

	rows := sqlmock.NewRows([]string{
		"STATUS_AUDIT_ID", "BATCH_RECORD_ID", "SECTION_ID", "VERSION_ID",
		"CURRENT_STATUS", "PREVIOUS_STATUS", "ACTION_TIME", "ACTION_BY",
		"REASON", "SIGNATURE_ID",
	}).AddRow("audit-1", "br-1", "sec-a", "ver-2",
		"PENDING_APPROVAL", "DRAFT", 1700000002000, "user-1",
		nil, "sig-1")

	sqlMock.ExpectQuery("SELECT (.+) FROM SECTION_STATUS_AUDIT WHERE BATCH_RECORD_ID = \\? AND SECTION_ID = \\? AND CURRENT_STATUS = \\? ORDER BY ACTION_TIME DESC LIMIT 1").
		WithArgs("br-1", "sec-a", "PENDING_APPROVAL").
		WillReturnRows(rows)

	audit, err := store.GetLatestTransitionTo(context.Background(), "br-1", "sec-a", "PENDING_APPROVAL")
	require.NoError(t, err)

	assert.Equal(t, "audit-1", audit.StatusAuditID)
	require.NotNil(t, audit.PreviousStatus)
	assert.Equal(t, "DRAFT", *audit.PreviousStatus)
}
