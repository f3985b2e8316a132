package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotCreate(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)

	rec := env.do(t, http.MethodPost, "/children/"+child.ID.String()+"/slots",
		CreateSlotRequest{
			DayOfWeek: 3,
			Start:     "16:00",
			End:       "16:30",
			SlotType:  "micro",
		}, &userID)

	require.Equal(t, http.StatusCreated, rec.Code)

	slot := decodeBody[SlotResponse](t, rec)
	assert.Equal(t, child.ID, slot.ChildID)
	assert.Equal(t, 3, slot.DayOfWeek)
	assert.Equal(t, "16:00", slot.Start)
	assert.Equal(t, "16:30", slot.End)
	assert.Equal(t, "micro", slot.SlotType)
	assert.Contains(t, env.slotStore.slots, slot.ID)
}

func TestSlotCreateValidation(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	target := "/children/" + child.ID.String() + "/slots"

	tests := []struct {
		name string
		req  CreateSlotRequest
	}{
		{
			name: "day out of range",
			req:  CreateSlotRequest{DayOfWeek: 8, Start: "16:00", End: "16:30", SlotType: "micro"},
		},
		{
			name: "bad clock string",
			req:  CreateSlotRequest{DayOfWeek: 3, Start: "four pm", End: "16:30", SlotType: "micro"},
		},
		{
			name: "end before start",
			req:  CreateSlotRequest{DayOfWeek: 3, Start: "16:30", End: "16:00", SlotType: "micro"},
		},
		{
			name: "unknown slot type",
			req:  CreateSlotRequest{DayOfWeek: 3, Start: "16:00", End: "16:30", SlotType: "long"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, target, tc.req, &userID)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSlotCreateForeignChildForbidden(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	child := env.addChild(t, uuid.New())
	otherUser := uuid.New()

	rec := env.do(t, http.MethodPost, "/children/"+child.ID.String()+"/slots",
		CreateSlotRequest{DayOfWeek: 3, Start: "16:00", End: "16:30", SlotType: "micro"},
		&otherUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSlotList(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	target := "/children/" + child.ID.String() + "/slots"

	rec := env.do(t, http.MethodPost, target, CreateSlotRequest{
		DayOfWeek: 1, Start: "09:00", End: "09:30", SlotType: "micro",
	}, &userID)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, target, nil, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	slots := decodeBody[[]SlotResponse](t, rec)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].Start)
}

func TestSlotUpdate(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	target := "/children/" + child.ID.String() + "/slots"

	rec := env.do(t, http.MethodPost, target, CreateSlotRequest{
		DayOfWeek: 1, Start: "09:00", End: "09:30", SlotType: "micro",
	}, &userID)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[SlotResponse](t, rec)

	rec = env.do(t, http.MethodPut, target+"/"+created.ID.String(), UpdateSlotRequest{
		DayOfWeek: 5, Start: "17:00", End: "18:00", SlotType: "standard",
	}, &userID)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[SlotResponse](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 5, updated.DayOfWeek)
	assert.Equal(t, "17:00", updated.Start)
	assert.Equal(t, "standard", updated.SlotType)
}

func TestSlotDelete(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	child := env.addChild(t, userID)
	target := "/children/" + child.ID.String() + "/slots"

	rec := env.do(t, http.MethodPost, target, CreateSlotRequest{
		DayOfWeek: 1, Start: "09:00", End: "09:30", SlotType: "micro",
	}, &userID)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[SlotResponse](t, rec)

	rec = env.do(t, http.MethodDelete, target+"/"+created.ID.String(), nil, &userID)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.slotStore.slots, created.ID)
}

func TestSlotDeleteOtherChildsSlot(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	userID := uuid.New()
	first := env.addChild(t, userID)
	second := env.addChild(t, userID)

	rec := env.do(t, http.MethodPost, "/children/"+first.ID.String()+"/slots",
		CreateSlotRequest{DayOfWeek: 1, Start: "09:00", End: "09:30", SlotType: "micro"},
		&userID)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[SlotResponse](t, rec)

	// The slot belongs to the first child; deleting it through the second
	// child's URL reports not found.
	rec = env.do(t, http.MethodDelete,
		"/children/"+second.ID.String()+"/slots/"+created.ID.String(), nil, &userID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
