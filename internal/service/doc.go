// Package service contains the application's business operations on tasks:
// owner-scoped querying, mutation, batch reordering, and the ownership gate
// that separates "not found" from "not yours". Services receive the acting
// user's identity explicitly on every call; there is no ambient request user.
package service
