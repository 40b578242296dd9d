package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

func runRequestRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		p, err := repo.Patient().Put(ctx, newTestPatient("Req"))
		gt.NoError(t, err).Required()

		first, err := repo.Request().Create(ctx, &model.PatientRequest{
			PatientID: p.ID,
			Kind:      types.RequestKindAppointment,
			Details:   "change from 2024-10-22 09:30 to 2024-10-21 15:00",
		})
		gt.NoError(t, err).Required()
		gt.String(t, string(first.ID)).NotEqual("")
		gt.Bool(t, first.CreatedAt.IsZero()).False()

		time.Sleep(10 * time.Millisecond)

		_, err = repo.Request().Create(ctx, &model.PatientRequest{
			PatientID: p.ID,
			Kind:      types.RequestKindMedication,
			Details:   "change medication to metformin",
		})
		gt.NoError(t, err).Required()

		list, err := repo.Request().List(ctx, p.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].ID).Equal(first.ID)
		gt.Value(t, list[0].Kind).Equal(types.RequestKindAppointment)
		gt.Value(t, list[1].Kind).Equal(types.RequestKindMedication)
		gt.Value(t, list[1].Details).Equal("change medication to metformin")
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		p, err := repo.Patient().Put(ctx, newTestPatient("Dup"))
		gt.NoError(t, err).Required()

		req := &model.PatientRequest{
			ID:        model.NewPatientRequestID(),
			PatientID: p.ID,
			Kind:      types.RequestKindMedication,
			Details:   "start physical therapy",
		}
		_, err = repo.Request().Create(ctx, req)
		gt.NoError(t, err).Required()
		_, err = repo.Request().Create(ctx, req)
		gt.Value(t, err).NotNil()
	})

	t.Run("Create rejects unknown kind", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Request().Create(context.Background(), &model.PatientRequest{
			PatientID: model.NewPatientID(),
			Kind:      "refill",
		})
		gt.Value(t, err).NotNil()
	})
}

func TestRequestRepository(t *testing.T) {
	runForEachBackend(t, runRequestRepositoryTest)
}
