package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePatient(t *testing.T) {
	r := newTestRouter(t)

	w, resp, err := performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/patient", body: map[string]interface{}{
		"full_name": "  John   Doe ", "phone_number": []string{"0812", " 0812 ", "0813"}, "age": 30,
	}})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	patient := dataMap(t, resp)
	assert.Equal(t, "John Doe", patient["full_name"])
	assert.Equal(t, "0812,0813", patient["phone_number"])

	w, _, err = performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/patient", body: map[string]interface{}{
		"full_name": "John Doe", "phone_number": []string{"0813"},
	}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate patient")

	w, _, err = performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/patient", body: map[string]interface{}{
		"full_name": "Jane Doe", "phone_number": []string{"  "},
	}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code, "blank phone numbers")

	id := int(patient["ID"].(float64))
	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: fmt.Sprintf("/patient/%d", id)})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "John Doe", dataMap(t, resp)["full_name"])

	// bookings may now refer to the patient
	rec := bookViaAPI(t, r, map[string]interface{}{"patient_id": id, "doctor": "dr-kim", "items": []string{"chuna"}, "date": "2025-01-15", "time": "10:00"})
	assert.Equal(t, float64(id), rec["patient_id"])

	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/reservation?date=2025-01-15"})
	require.NoError(t, err)
	entries := dataMap(t, resp)["reservations"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "John Doe", entries[0].(map[string]interface{})["patient_name"])
}

func TestListAndGetPatients(t *testing.T) {
	r := newTestRouter(t)
	for _, name := range []string{"Alice", "Bob", "Alicia"} {
		w, _, err := performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/patient", body: map[string]interface{}{
			"full_name": name, "phone_number": []string{"08" + name},
		}})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp, err := performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/patient?keyword=Ali&sort=full_name&limit=1"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["total_fetched"])
	assert.Equal(t, "Alice", data["patients"].([]interface{})[0].(map[string]interface{})["full_name"])

	w, _, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/patient/999"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/patient/abc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _, err = performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/reservation", body: map[string]interface{}{
		"patient_id": 999, "doctor": "dr-kim", "items": []string{"chuna"}, "date": "2025-01-15", "time": "10:00",
	}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown patient")
}

func TestGetPatientReservations(t *testing.T) {
	r := newTestRouter(t)

	w, resp, err := performRequest(r, requestSpec{method: http.MethodPost, requestPath: "/patient", body: map[string]interface{}{
		"full_name": "Park Seoyeon", "phone_number": []string{"0819"},
	}})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int(dataMap(t, resp)["ID"].(float64))

	early := bookViaAPI(t, r, map[string]interface{}{"patient_id": id, "doctor": "dr-kim", "items": []string{"chuna"}, "date": "2025-01-15", "time": "10:00"})
	late := bookViaAPI(t, r, map[string]interface{}{"patient_id": id, "doctor": "dr-lee", "items": []string{"cupping"}, "date": "2025-01-16", "time": "11:00"})
	w, _, err = performRequest(r, requestSpec{method: http.MethodPost, requestPath: fmt.Sprintf("/reservation/%s/cancel", early["id"])})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/patient/%d/reservations", id)
	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: path})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataMap(t, resp)["reservations"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, late["id"], list[0].(map[string]interface{})["id"])

	w, resp, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: path + "?all=true"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dataMap(t, resp)["total"])

	w, _, err = performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/patient/999/reservations"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
