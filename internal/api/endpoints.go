package api

import (
	"fmt"
	"net/http"
)

// AuthScheme is the fixed keyword the server expects in the Authorization
// header: "Token", one space, then the raw key. The token is passed through
// verbatim (no re-encoding).
const AuthScheme = "Token"

// Headers returns the base headers for a JSON request. When token is
// non-empty an Authorization entry is added. Multipart submissions must not
// use the JSON content type; the transport sets the boundary-carrying type
// itself (see submitForm).
func Headers(token string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if token != "" {
		h.Set("Authorization", AuthScheme+" "+token)
	}
	return h
}

// Relative endpoint paths, joined onto the configured base URL (which already
// carries the /api prefix). The auth group is served by the server's
// rest-auth integration; everything else is the society API proper.
const (
	EndpointLogin      = "/auth/login/"
	EndpointRegister   = "/auth/registration/"
	EndpointLogout     = "/auth/logout/"
	EndpointAuthUser   = "/auth/user/"
	EndpointUserStatus = "/user-status/"

	EndpointUsers          = "/users/"
	EndpointFlats          = "/flats/"
	EndpointBills          = "/bills/"
	EndpointComplaints     = "/complaints/"
	EndpointVehicles       = "/vehicles/"
	EndpointCameraRequests = "/camera-requests/"
	EndpointNotifications  = "/notifications/"
	EndpointProfileUpdate  = "/profile/update/"

	EndpointForumCategories = "/forum/categories/"
	EndpointForumPosts      = "/forum/posts/"
	EndpointForumComments   = "/forum/comments/"
)

// Per-resource action sub-paths.

func endpointAssignFlat(userID int) string {
	return fmt.Sprintf("/users/%d/assign_flat/", userID)
}

func endpointRemoveFromFlat(userID int) string {
	return fmt.Sprintf("/users/%d/remove_from_flat/", userID)
}

func endpointResetPassword(userID int) string {
	return fmt.Sprintf("/users/%d/reset_password/", userID)
}

func endpointComplaintStatus(complaintID int) string {
	return fmt.Sprintf("/complaints/%d/update_status/", complaintID)
}

func endpointCameraRequest(requestID int) string {
	return fmt.Sprintf("/camera-requests/%d/", requestID)
}

func endpointBill(billID int) string {
	return fmt.Sprintf("/bills/%d/", billID)
}

func endpointNotificationRead(notificationID int) string {
	return fmt.Sprintf("/notifications/%d/mark_read/", notificationID)
}
