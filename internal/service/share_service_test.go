package service

import (
	"context"
	"testing"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareMessages(t *testing.T) {
	st := memory.New()
	st.Put(models.BloodRequest{
		ID:           "r1",
		HospitalName: "Apollo Hospital",
		BloodGroup:   models.ONegative,
		Units:        2,
		Urgency:      models.UrgencyCritical,
		PatientStory: "Accident victim",
		Status:       models.RequestOpen,
	})
	st.Put(models.BloodRequest{ID: "r2", HospitalName: "Care Hospital", BloodGroup: models.APositive, Units: 1})

	share := NewShareService(NewQueryService(st, nil), "https://raktsetu.example")

	msgs, err := share.Messages(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "https://raktsetu.example/?requestId=r1", msgs.VerificationURL)
	assert.Contains(t, msgs.English, "A patient at *Apollo Hospital* is in critical need of blood.")
	assert.Contains(t, msgs.English, "*Blood Group:* O-")
	assert.Contains(t, msgs.English, "*Patient Story:* Accident victim")
	assert.Contains(t, msgs.English, msgs.VerificationURL)
	assert.Contains(t, msgs.Hindi, "*ब्लड ग्रुप:* O-")
	assert.Contains(t, msgs.Hindi, "*मरीज की कहानी:* Accident victim")

	plain, err := share.Messages(context.Background(), "r2")
	require.NoError(t, err)
	assert.NotContains(t, plain.English, "Patient Story")
	assert.NotContains(t, plain.Hindi, "मरीज की कहानी")

	_, err = share.Messages(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, MsgRequestMissing, err.Error())
}
