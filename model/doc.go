// Package model defines the configuration and wire entities of the
// integration bus: messages, routes, workflow definitions and service-call
// audit records.  Entities here are plain data; behaviour lives in the
// service packages.
package model
