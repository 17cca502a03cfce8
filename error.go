package bptree

import "github.com/cockroachdb/errors"

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrAllocationFailed = errors.New("node allocation failed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInternal         = errors.New("internal consistency error")

	// ErrTreeInvalid is the base of every error returned by Tree.Check.
	ErrTreeInvalid = errors.New("tree invariant violated")

	ErrKeysUnsorted    = errors.New("keys must be inserted in strictly ascending order")
	ErrBulkLoaderEmpty = errors.New("bulk loader is empty")
	ErrLoaderFinalized = errors.New("bulk loader has already been finalized")
)
