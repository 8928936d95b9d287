package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
)

type fakeUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeUnit) Commit() error {
	f.committed = true
	return f.commitErr
}

func (f *fakeUnit) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeFactory struct {
	unit     *fakeUnit
	beginErr error
}

func (f *fakeFactory) Begin(context.Context) (uow.UnitOfWork, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.unit, nil
}

func TestDo(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		fnErr        error
		commitErr    error
		wantErr      error
		wantCommit   bool
		wantRollback bool
	}{
		{name: "success commits", wantCommit: true},
		{name: "error rolls back", fnErr: boom, wantErr: boom, wantRollback: true},
		{name: "commit failure surfaces", commitErr: boom, wantErr: boom, wantCommit: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			unit := &fakeUnit{commitErr: tc.commitErr}
			err := uow.Do(context.Background(), &fakeFactory{unit: unit}, func(uow.UnitOfWork) error {
				return tc.fnErr
			})

			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if unit.committed != tc.wantCommit {
				t.Errorf("committed = %v, want %v", unit.committed, tc.wantCommit)
			}
			if unit.rolledBack != tc.wantRollback {
				t.Errorf("rolled back = %v, want %v", unit.rolledBack, tc.wantRollback)
			}
		})
	}
}

func TestDoBeginFailure(t *testing.T) {
	boom := errors.New("no connection")
	called := false
	err := uow.Do(context.Background(), &fakeFactory{beginErr: boom}, func(uow.UnitOfWork) error {
		called = true
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
	if called {
		t.Error("fn must not run when Begin fails")
	}
}

func TestDoRollsBackOnPanic(t *testing.T) {
	unit := &fakeUnit{}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
		if !unit.rolledBack {
			t.Error("expected rollback on panic")
		}
	}()
	_ = uow.Do(context.Background(), &fakeFactory{unit: unit}, func(uow.UnitOfWork) error {
		panic("boom")
	})
}
