// Package dlcf_library embeds the e-library and community platform engine
// @title DLCF e-Library API
// @version 1.0
// @description RESTful API for the DLCF e-Library: accounts, content library, communities, live sessions and notifications
// @description
// @description ## Business status codes
// @description | Code | Meaning |
// @description |------|---------|
// @description | 0 | success |
// @description | 10001 | invalid parameter |
// @description | 10002 | user not found |
// @description | 10003 | wrong password (login failed) |
// @description | 10004 | invalid token |
// @description | 10005 | permission denied |
// @description | 10006 | resource not found |
// @description | 10007 | muted in community |
// @description | 99999 | internal error |
// @description
// @description ## HTTP status codes
// @description - **200**: request reached the service (check response.code for the business outcome)
// @description - **401**: unauthenticated (no login / invalid token / failed login)
// @description - **403**: permission denied
// @description - **500**: internal server error
// @description
// @description ## Response format
// @description Library and community endpoints share one envelope:
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
// @description Live-session endpoints return plain JSON objects instead.
//
// @termsOfService https://github.com/IsraelDcoder/Dlcf-library
//
// @contact.name API Support
// @contact.url https://github.com/IsraelDcoder/Dlcf-library/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Format: Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description For WebSocket and other clients that cannot set headers
package dlcf_library
