// Package http provides the portal's HTTP handlers and middleware.
//
// The router exposes the following endpoints:
//   - GET /login describes the login form. POST /login accepts a form or JSON
//     body {"username","password","next"}, records the caller address on the
//     account, sets the signed `session_token` cookie and redirects to next
//     (default /). POST /logout revokes the session and redirects to /login.
//   - GET / returns the dashboard: open attendance session, the latest five
//     visible announcements and the caller address. GET /profile and
//     GET /announcements return the caller's account and full feed.
//   - POST /time_in and POST /time_out open and close the caller's attendance
//     session and redirect to /. GET /attendance?page=N lists history and
//     GET /attendance/export?from=&to= (staff) downloads an XLSX workbook.
//   - GET|POST /leave/request, GET /leave/list?page=N, and for staff
//     GET /leave/approval, GET /leave/approve/{id}, GET /leave/reject/{id}.
//   - GET /payroll?page=N, GET /payroll/{id}, and for staff
//     GET /payroll/approval, GET /payroll/approve/{id}.
//   - GET /sw.js, GET /manifest.json and GET /healthz are public.
//
// Unauthenticated requests are redirected to /login?next=<path>. Non-staff
// requests to staff routes are redirected to /. Validation failures return
// 422 with a field map, decided leaves 409, and missing or foreign records an
// identical 404 body. Request and response DTOs live in dto.go and next to
// their handlers.
package http
