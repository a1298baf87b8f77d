package routers

import (
	"net/http"
	"triptally/internal/api/handlers/trips"
)

func tripsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/trips/create", trips.CreateTripHandler)

	mux.HandleFunc("/trips/", trips.GetMyTripsHandler)

	mux.HandleFunc("/trips/{id}", trips.GetTripByIDHandler)

	mux.HandleFunc("/trips/delete/{id}", trips.DeleteTripHandler)

	mux.HandleFunc("/trips/update/{id}", trips.UpdateTripHandler)

	mux.HandleFunc("/trips/member/{id}/invite", trips.InviteCollaboratorsHandler)

	mux.HandleFunc("/trips/member/accept/{tokenCode}/invite", trips.AcceptInvitationHandler)

	mux.HandleFunc("/trips/member/{id}/remove", trips.RemoveCollaboratorHandler)

	mux.HandleFunc("/trips/member/{id}/leave", trips.LeaveTripHandler)

	return mux
}
