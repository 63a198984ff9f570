package api

import (
	"net/http"
	"strconv"

	"github.com/hackgods/clinic-booking/internal/record"
)

type recordResponse struct {
	Message       string               `json:"message"`
	MedicalRecord *record.RecordDetail `json:"medicalRecord"`
}

// pageQuery reads page and limit. Unparseable values fall back to defaults.
func pageQuery(r *http.Request) record.PageQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return record.PageQuery{Page: page, Limit: limit}
}

func listMyRecordsHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.ListMine(r.Context(), actor(r), pageQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func createRecordHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in record.CreateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Create(r.Context(), actor(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, recordResponse{
			Message:       "Medical record created successfully",
			MedicalRecord: rec,
		})
	}
}

func listPatientRecordsHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := pathID(r, "patientId")
		if err != nil {
			writeError(w, r, err)
			return
		}

		page, err := svc.ListByPatient(r.Context(), actor(r), patientID, pageQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func vitalsHistoryHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := pathID(r, "patientId")
		if err != nil {
			writeError(w, r, err)
			return
		}

		points, err := svc.VitalsHistory(r.Context(), actor(r), patientID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, points)
	}
}

func recordVitalsHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := pathID(r, "patientId")
		if err != nil {
			writeError(w, r, err)
			return
		}

		var in record.VitalsInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.RecordVitals(r.Context(), actor(r), patientID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, recordResponse{
			Message:       "Patient vitals updated successfully",
			MedicalRecord: rec,
		})
	}
}

func getRecordHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Get(r.Context(), actor(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func updateRecordHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		var in record.UpdateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Update(r.Context(), actor(r), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, recordResponse{
			Message:       "Medical record updated successfully",
			MedicalRecord: rec,
		})
	}
}

func deleteRecordHandler(svc RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := svc.Delete(r.Context(), actor(r), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeMessage(w, http.StatusOK, "Medical record deleted successfully")
	}
}
