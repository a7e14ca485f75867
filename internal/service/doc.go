// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// The two services here are the UserDirectory, which resolves externally
// authenticated identities to local user records (provisioning them on first
// sight), and the TaskService, which implements owner-scoped task management
// with filtering and pagination.
//
// Services receive dependencies through constructor injection and depend only
// on the store interfaces, never on a specific database implementation. They
// translate store-level errors into application-level errors that the API
// layer maps to HTTP status codes.
package service
