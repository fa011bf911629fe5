// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id}, DELETE /rooms/{id}:
//     room catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Listing and lookup are available to any authenticated
//     principal while mutations require admin privileges.
//   - POST /reservations, PUT /reservations/{id}, DELETE /reservations/{id}:
//     reservation lifecycle endpoints exchanging the `reservationDTO` payload
//     defined in reservation_handler.go. Deletion cancels the reservation and
//     is rejected less than one hour before the start.
//   - POST /reservations/{id}/checkin: marks the reservation as attended.
//   - POST /reservations/recurring: expands a weekly recurrence request and
//     books every occurrence atomically. Responds with the full batch.
//   - GET /rooms/{id}/occupancy?start&end: historical occupancy rate for one
//     room over the given interval.
//   - GET /occupancy: snapshot partitioning all rooms into occupied and
//     available sets, honoring the no-show grace period.
//   - GET /availability?start&end&party_size: rooms free for the interval.
//   - GET /reminders?user_id: reservations starting within the next two hours.
//
// Identity arrives via the `X-User-ID` and `X-User-Admin` headers set by the
// fronting gateway; RequirePrincipal turns them into the request principal.
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
