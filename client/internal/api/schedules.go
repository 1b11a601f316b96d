package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/travelmate/tripplanner/client/internal/types"
)

// ListSchedules returns the schedules owned by userID. Scoping is always
// explicit via ?userId= rather than relying on token-scoped listing.
func ListSchedules(ctx context.Context, rc *resty.Client, userID int64) ([]types.Schedule, error) {
	if err := types.ValidateID(userID, "userId"); err != nil {
		return nil, err
	}
	req := rc.R().SetQueryParam("userId", strconv.FormatInt(userID, 10))
	var out []types.Schedule
	if err := execute(ctx, req, http.MethodGet, "/schedules", "list schedules", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.Schedule{}
	}
	return out, nil
}

// GetSchedule retrieves a schedule by id.
func GetSchedule(ctx context.Context, rc *resty.Client, id int64) (*types.Schedule, error) {
	if err := types.ValidateID(id, "scheduleId"); err != nil {
		return nil, err
	}
	var s types.Schedule
	if err := execute(ctx, rc.R(), http.MethodGet, schedulePath(id), "get schedule", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSchedule stores a new schedule and returns the stored record.
func CreateSchedule(ctx context.Context, rc *resty.Client, req types.ScheduleRequest) (*types.Schedule, error) {
	if err := types.ValidateID(req.UserID, "userId"); err != nil {
		return nil, err
	}
	var s types.Schedule
	if err := execute(ctx, rc.R().SetBody(req), http.MethodPost, "/schedules", "create schedule", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSchedule replaces the schedule with the given id.
func UpdateSchedule(ctx context.Context, rc *resty.Client, id int64, req types.ScheduleRequest) (*types.Schedule, error) {
	if err := types.ValidateID(id, "scheduleId"); err != nil {
		return nil, err
	}
	if err := types.ValidateID(req.UserID, "userId"); err != nil {
		return nil, err
	}
	var s types.Schedule
	if err := execute(ctx, rc.R().SetBody(req), http.MethodPut, schedulePath(id), "update schedule", &s); err != nil {
		return nil, err
	}
	if s.ID == 0 {
		s.ID = id
	}
	return &s, nil
}

// DeleteSchedule removes a schedule. Backends answer 200 or 204.
func DeleteSchedule(ctx context.Context, rc *resty.Client, id int64) error {
	if err := types.ValidateID(id, "scheduleId"); err != nil {
		return err
	}
	return execute(ctx, rc.R(), http.MethodDelete, schedulePath(id), "delete schedule", nil)
}

func schedulePath(id int64) string {
	return fmt.Sprintf("/schedules/%d", id)
}
