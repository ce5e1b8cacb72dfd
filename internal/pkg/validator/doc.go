// Package validator provides a small validation abstraction for request
// bodies and domain structs.
//
// Business code depends on the Validator interface. Inbound layers that need
// to check a raw JSON payload before decoding it use JSONValidator, which
// reports type mismatches and rule violations together, in schema field order.
package validator
