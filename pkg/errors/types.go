// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package errors

var (
	// ErrAuthentication indicates failure occurred while authenticating the entity.
	ErrAuthentication = New("failed to perform authentication over the entity")

	// ErrAuthorization indicates failure occurred while authorizing the entity.
	ErrAuthorization = New("failed to perform authorization over the entity")

	// ErrNotFound indicates a non-existent entity request.
	ErrNotFound = New("non-existent entity")

	// ErrConflict indicates that entity already exists.
	ErrConflict = New("entity already exists")

	// ErrMalformedEntity indicates a malformed entity specification.
	ErrMalformedEntity = New("malformed entity specification")

	// ErrCreateEntity indicates error in creating entity or entities.
	ErrCreateEntity = New("failed to create entity")

	// ErrRetrieveEntity indicates error in viewing entity or entities.
	ErrRetrieveEntity = New("failed to retrieve entity")

	// ErrUpdateEntity indicates error in updating entity or entities.
	ErrUpdateEntity = New("failed to update entity")

	// ErrRemoveEntity indicates error in removing entity.
	ErrRemoveEntity = New("failed to remove entity")
)
