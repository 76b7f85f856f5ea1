package service

import (
	"errors"
	"fmt"

	"dodscars/internal/models"
)

// ErrForbidden is returned when an actor's role does not permit an action.
var ErrForbidden = errors.New("forbidden")

// Action names every operation that is role-gated. The table below is
// closed: an action missing from it is denied for everyone.
type Action string

const (
	ActionSearchCars       Action = "search_cars"
	ActionListCars         Action = "list_cars"
	ActionAddCar           Action = "add_car"
	ActionUpdateCar        Action = "update_car"
	ActionRemoveCar        Action = "remove_car"
	ActionRequestBooking   Action = "request_booking"
	ActionApproveBooking   Action = "approve_booking"
	ActionRejectBooking    Action = "reject_booking"
	ActionAddCharge        Action = "add_charge"
	ActionViewOwnBookings  Action = "view_own_bookings"
	ActionViewAllBookings  Action = "view_all_bookings"
	ActionOpenMaintenance  Action = "open_maintenance"
	ActionCloseMaintenance Action = "close_maintenance"
	ActionViewMaintenance  Action = "view_maintenance"
)

var capabilities = map[string]map[Action]bool{
	models.RoleCustomer: {
		ActionSearchCars:      true,
		ActionListCars:        true,
		ActionRequestBooking:  true,
		ActionViewOwnBookings: true,
	},
	models.RoleAdmin: {
		ActionSearchCars:       true,
		ActionListCars:         true,
		ActionAddCar:           true,
		ActionUpdateCar:        true,
		ActionRemoveCar:        true,
		ActionRequestBooking:   true,
		ActionApproveBooking:   true,
		ActionRejectBooking:    true,
		ActionAddCharge:        true,
		ActionViewOwnBookings:  true,
		ActionViewAllBookings:  true,
		ActionOpenMaintenance:  true,
		ActionCloseMaintenance: true,
		ActionViewMaintenance:  true,
	},
}

// Authorize checks the actor's role against the capability table.
func Authorize(actor models.Actor, action Action) error {
	if capabilities[actor.Role][action] {
		return nil
	}
	return fmt.Errorf("%w: role %q cannot %s", ErrForbidden, actor.Role, action)
}
