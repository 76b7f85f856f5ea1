package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"
)

func (s *HTTPServer) handleCars(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		cars, err := s.fleet.ListCars(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cars": cars})

	case http.MethodPost:
		var car models.Car
		if err := decodeBody(r, &car); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.fleet.AddCar(r.Context(), actor, &car); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, car)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCarByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, rest, err := pathID(r.URL.Path, "/api/v1/cars/")
	if err != nil || rest != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		car, err := s.fleet.GetCar(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, car)

	case http.MethodPut:
		var car models.Car
		if err := decodeBody(r, &car); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		car.ID = id
		if err := s.fleet.UpdateCar(r.Context(), actor, &car); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, car)

	case http.MethodDelete:
		if err := s.fleet.RemoveCar(r.Context(), actor, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rng, err := daterange.Parse(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start/end; expected YYYY-MM-DD with end after start")
		return
	}

	cars, err := s.availability.Search(r.Context(), actor, rng)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body struct {
			CarID     int64  `json:"car_id"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		start, err := time.Parse(daterange.DateFormat, body.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse(daterange.DateFormat, body.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
			return
		}

		booking, err := s.bookings.Request(r.Context(), actor, body.CarID, start, end)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)

	case http.MethodGet:
		if r.URL.Query().Get("pending") == "true" {
			queue, err := s.bookings.ListPending(r.Context(), actor)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"bookings": queue})
			return
		}

		userID := actor.UserID
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			userID, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid user_id")
				return
			}
		}
		list, err := s.bookings.ListForUser(r.Context(), actor, userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": list})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, rest, err := pathID(r.URL.Path, "/api/v1/bookings/")
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch rest {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.Get(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case "approve":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.bookings.Approve(r.Context(), actor, id); err != nil {
			writeServiceError(w, err)
			return
		}
		booking, err := s.bookings.Get(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case "reject":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.bookings.Reject(r.Context(), actor, id); err != nil {
			writeServiceError(w, err)
			return
		}
		booking, err := s.bookings.Get(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case "charges":
		s.handleCharges(w, r, actor, id)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleCharges(w http.ResponseWriter, r *http.Request, actor models.Actor, bookingID int64) {
	switch r.Method {
	case http.MethodPost:
		var body struct {
			Code   string  `json:"code"`
			Amount float64 `json:"amount"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		charge, err := s.bookings.AddCharge(r.Context(), actor, bookingID, body.Code, body.Amount)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, charge)

	case http.MethodGet:
		charges, err := s.bookings.Charges(r.Context(), actor, bookingID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"charges": charges})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body struct {
			CarID     int64   `json:"car_id"`
			Type      string  `json:"type"`
			Cost      float64 `json:"cost"`
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Notes     string  `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		start, err := time.Parse(daterange.DateFormat, body.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
			return
		}
		window := &models.MaintenanceWindow{
			CarID:     body.CarID,
			Type:      body.Type,
			Cost:      body.Cost,
			StartDate: start,
			Notes:     body.Notes,
		}
		if body.EndDate != "" {
			end, err := time.Parse(daterange.DateFormat, body.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
				return
			}
			window.EndDate = &end
		}

		warnings, err := s.maintenance.Open(r.Context(), actor, window)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"window":                window,
			"conflicting_approvals": warnings,
		})

	case http.MethodGet:
		var carID int64
		if raw := r.URL.Query().Get("car_id"); raw != "" {
			carID, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid car_id")
				return
			}
		}
		windows, err := s.maintenance.List(r.Context(), actor, carID, r.URL.Query().Get("open") == "true")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"windows": windows})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleMaintenanceByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, rest, err := pathID(r.URL.Path, "/api/v1/maintenance/")
	if err != nil || rest != "close" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		EndDate string `json:"end_date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := time.Parse(daterange.DateFormat, body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
		return
	}

	if err := s.maintenance.Close(r.Context(), actor, id, end); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID splits "/prefix/{id}[/rest]" into the id and the remainder.
func pathID(path, prefix string) (int64, string, error) {
	trimmed := strings.TrimPrefix(path, prefix)
	part, rest, _ := strings.Cut(trimmed, "/")
	id, err := strconv.ParseInt(part, 10, 64)
	if err != nil {
		return 0, "", err
	}
	return id, rest, nil
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
