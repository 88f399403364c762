// Package app assembles the dashboard API server: it loads configuration,
// initializes structured logging, reads the prepared dataset into the data
// service and composes the chi router with its middleware chain.
package app
