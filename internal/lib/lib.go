// Package lib holds modules that do not fit strictly into other layers:
// JSON encoding, background job processing (Redis/Asynq) and the email
// client (Resend).
package lib
