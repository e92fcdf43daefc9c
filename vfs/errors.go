package vfs

import "errors"

// Failure taxonomy for the command surface. Commands wrap these with
// context via fmt.Errorf and %w; callers match with errors.Is.
var (
	ErrInvalidName   = errors.New("invalid name")
	ErrAlreadyExists = errors.New("item already exists")
	ErrNotFound      = errors.New("item not found")
	ErrNotADirectory = errors.New("not a directory")
	ErrNotAFile      = errors.New("not a file")
	ErrNotEmpty      = errors.New("directory not empty")
	ErrAtRoot        = errors.New("already at root")
)
