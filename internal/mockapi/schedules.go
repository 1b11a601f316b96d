package mockapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/travelmate/tripplanner/client"
)

const msgForeignRecord = "Private resource access: entity must have a reference to the owner id"

func scheduleID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// listSchedules requires ?userId= naming the caller.
func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("userId")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil || userID != callerID(r) {
		writeError(w, http.StatusForbidden, msgForeignRecord)
		return
	}

	s.mu.RLock()
	out := make([]client.Schedule, 0)
	for _, sc := range s.schedules {
		if sc.UserID == userID {
			out = append(out, sc)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

// owned loads schedule id and checks the caller owns it.
func (s *Server) owned(w http.ResponseWriter, r *http.Request) (client.Schedule, bool) {
	id := scheduleID(r)
	s.mu.RLock()
	sc, ok := s.schedules[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return sc, false
	}
	if sc.UserID != callerID(r) {
		writeError(w, http.StatusForbidden, msgForeignRecord)
		return sc, false
	}
	return sc, true
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	if sc, ok := s.owned(w, r); ok {
		writeJSON(w, http.StatusOK, sc)
	}
}

func decodeSchedule(w http.ResponseWriter, r *http.Request) (client.ScheduleRequest, bool) {
	var in client.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return in, false
	}
	if in.UserID != callerID(r) {
		writeError(w, http.StatusForbidden, msgForeignRecord)
		return in, false
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return in, false
	}
	return in, true
}

func fromRequest(id int64, in client.ScheduleRequest) client.Schedule {
	return client.Schedule{
		ID:          id,
		UserID:      in.UserID,
		Title:       in.Title,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Attractions: in.Attractions,
		TotalCost:   in.TotalCost,
	}
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.nextSchedule++
	sc := fromRequest(s.nextSchedule, in)
	s.schedules[sc.ID] = sc
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.owned(w, r)
	if !ok {
		return
	}
	in, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	sc := fromRequest(existing.ID, in)
	s.mu.Lock()
	s.schedules[sc.ID] = sc
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.owned(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.schedules, sc.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// SeedSchedules adds n placeholder schedules owned by userID.
func (s *Server) SeedSchedules(userID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.nextSchedule++
		s.schedules[s.nextSchedule] = client.Schedule{
			ID:     s.nextSchedule,
			UserID: userID,
			Title:  "Seeded trip " + strconv.Itoa(i+1),
		}
	}
}
