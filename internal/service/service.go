// Package service holds the domain operations behind the endpoints.
//
// Handlers pass it already bound and validated requests. Services read
// the fixture stores through repository.Store, run the stub token flow,
// and queue the welcome email. Failures come back as errs.HTTPError.
package service
