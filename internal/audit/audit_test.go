package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			KindLogin,
			7,                // user_id
			"alice@x.com",    // subject
			"10.0.0.1",       // client_ip
			true,             // success
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Record(context.Background(), Event{
		Kind:     KindLogin,
		UserID:   7,
		Subject:  "alice@x.com",
		ClientIP: "10.0.0.1",
		Success:  true,
	})
	if err != nil {
		t.Errorf("Record() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreRecordUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	// A login attempt that never matched an account stores NULL user_id.
	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			KindLogin,
			nil,
			"nobody@x.com",
			"10.0.0.2",
			false,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Record(context.Background(), Event{
		Kind:     KindLogin,
		Subject:  "nobody@x.com",
		ClientIP: "10.0.0.2",
		Success:  false,
	})
	if err != nil {
		t.Errorf("Record() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
