// Package domain contains the core business entities and domain logic of
// the application: users and their dated tasks. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
