// Package voserr defines the typed error kinds shared across vost's core
// packages. Each kind is a small struct carrying enough context to format
// a useful message, with a matching IsXxx predicate, in the idiom of
// typed sentinel errors with predicate helpers.
package voserr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a path or ref does not exist.
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("vost: not found: %s", e.Path)
}

func NotFound(path string) error {
	return &ErrNotFound{Path: path}
}

func IsNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

// ErrIsDirectory indicates a file-only operation was attempted on a directory.
type ErrIsDirectory struct {
	Path string
}

func (e *ErrIsDirectory) Error() string {
	return fmt.Sprintf("vost: is a directory: %s", e.Path)
}

func IsDirectory(path string) error {
	return &ErrIsDirectory{Path: path}
}

func IsIsDirectory(err error) bool {
	var e *ErrIsDirectory
	return errors.As(err, &e)
}

// ErrNotDirectory indicates a directory-only operation was attempted on a
// non-directory entry.
type ErrNotDirectory struct {
	Path string
}

func (e *ErrNotDirectory) Error() string {
	return fmt.Sprintf("vost: not a directory: %s", e.Path)
}

func NotDirectory(path string) error {
	return &ErrNotDirectory{Path: path}
}

func IsNotDirectory(err error) bool {
	var e *ErrNotDirectory
	return errors.As(err, &e)
}

// ErrNotLink indicates readlink was attempted on a non-symlink entry.
type ErrNotLink struct {
	Path string
}

func (e *ErrNotLink) Error() string {
	return fmt.Sprintf("vost: not a symlink: %s", e.Path)
}

func NotLink(path string) error {
	return &ErrNotLink{Path: path}
}

func IsNotLink(err error) bool {
	var e *ErrNotLink
	return errors.As(err, &e)
}

// ErrInvalidPath indicates a path failed normalization (empty segment, '.',
// '..', or an otherwise malformed input).
type ErrInvalidPath struct {
	Path   string
	Reason string
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("vost: invalid path %q: %s", e.Path, e.Reason)
}

func InvalidPath(path, reason string) error {
	return &ErrInvalidPath{Path: path, Reason: reason}
}

func IsInvalidPath(err error) bool {
	var e *ErrInvalidPath
	return errors.As(err, &e)
}

// ErrInvalidRefName indicates a ref name contains a forbidden character.
type ErrInvalidRefName struct {
	Name string
}

func (e *ErrInvalidRefName) Error() string {
	return fmt.Sprintf("vost: invalid ref name: %q", e.Name)
}

func InvalidRefName(name string) error {
	return &ErrInvalidRefName{Name: name}
}

func IsInvalidRefName(err error) bool {
	var e *ErrInvalidRefName
	return errors.As(err, &e)
}

// ErrInvalidTag indicates a tag ref does not resolve to a commit.
type ErrInvalidTag struct {
	Name string
	Type string
}

func (e *ErrInvalidTag) Error() string {
	return fmt.Sprintf("vost: tag %q does not resolve to a commit (points to %s)", e.Name, e.Type)
}

func InvalidTag(name, objType string) error {
	return &ErrInvalidTag{Name: name, Type: objType}
}

func IsInvalidTag(err error) bool {
	var e *ErrInvalidTag
	return errors.As(err, &e)
}

// ErrAlreadyExists indicates an attempt to overwrite a write-once tag.
type ErrAlreadyExists struct {
	Name string
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("vost: already exists: %s", e.Name)
}

func AlreadyExists(name string) error {
	return &ErrAlreadyExists{Name: name}
}

func IsAlreadyExists(err error) bool {
	var e *ErrAlreadyExists
	return errors.As(err, &e)
}

// ErrPermissionDenied indicates a write was attempted on a read-only
// snapshot (one taken from a tag or a detached commit).
type ErrPermissionDenied struct {
	Reason string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("vost: permission denied: %s", e.Reason)
}

func PermissionDenied(reason string) error {
	return &ErrPermissionDenied{Reason: reason}
}

func IsPermissionDenied(err error) bool {
	var e *ErrPermissionDenied
	return errors.As(err, &e)
}

// ErrStaleSnapshot indicates the compare-and-swap ref update observed a
// branch tip different from the snapshot's captured parent. The caller is
// expected to refetch the branch and retry.
type ErrStaleSnapshot struct {
	Branch   string
	Expected string
	Actual   string
}

func (e *ErrStaleSnapshot) Error() string {
	return fmt.Sprintf("vost: stale snapshot on branch %s: expected parent %s, branch is at %s", e.Branch, e.Expected, e.Actual)
}

func StaleSnapshot(branch, expected, actual string) error {
	return &ErrStaleSnapshot{Branch: branch, Expected: expected, Actual: actual}
}

func IsStaleSnapshot(err error) bool {
	var e *ErrStaleSnapshot
	return errors.As(err, &e)
}

// ErrInvalidArgument covers cross-repo operations, scp-style mirror URLs,
// and same-source/destination moves.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("vost: invalid argument: %s", e.Reason)
}

func InvalidArgument(reason string) error {
	return &ErrInvalidArgument{Reason: reason}
}

func IsInvalidArgument(err error) bool {
	var e *ErrInvalidArgument
	return errors.As(err, &e)
}

// ErrInvalidState indicates an operation on an already-closed batch or file.
type ErrInvalidState struct {
	Reason string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("vost: invalid state: %s", e.Reason)
}

func InvalidState(reason string) error {
	return &ErrInvalidState{Reason: reason}
}

func IsInvalidState(err error) bool {
	var e *ErrInvalidState
	return errors.As(err, &e)
}

// ErrInvalidMessage indicates a commit-message template referenced an
// unknown placeholder.
type ErrInvalidMessage struct {
	Placeholder string
}

func (e *ErrInvalidMessage) Error() string {
	return fmt.Sprintf("vost: invalid message placeholder: {%s}", e.Placeholder)
}

func InvalidMessage(placeholder string) error {
	return &ErrInvalidMessage{Placeholder: placeholder}
}

func IsInvalidMessage(err error) bool {
	var e *ErrInvalidMessage
	return errors.As(err, &e)
}

// ErrNotEnoughHistory indicates Back(n) was asked to walk further than the
// commit chain goes.
type ErrNotEnoughHistory struct {
	Requested, Available int
}

func (e *ErrNotEnoughHistory) Error() string {
	return fmt.Sprintf("vost: not enough history: requested %d commits back, only %d available", e.Requested, e.Available)
}

func NotEnoughHistory(requested, available int) error {
	return &ErrNotEnoughHistory{Requested: requested, Available: available}
}

func IsNotEnoughHistory(err error) bool {
	var e *ErrNotEnoughHistory
	return errors.As(err, &e)
}

// ErrTransport wraps an error surfaced from the mirror transport.
type ErrTransport struct {
	URL string
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("vost: transport error for %s: %s", e.URL, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

func Transport(url string, err error) error {
	return &ErrTransport{URL: url, Err: err}
}

func IsTransport(err error) bool {
	var e *ErrTransport
	return errors.As(err, &e)
}

// ErrNotGitRepository indicates a mirror target is not a git repository.
type ErrNotGitRepository struct {
	Path string
}

func (e *ErrNotGitRepository) Error() string {
	return fmt.Sprintf("vost: not a git repository: %s", e.Path)
}

func NotGitRepository(path string) error {
	return &ErrNotGitRepository{Path: path}
}

func IsNotGitRepository(err error) bool {
	var e *ErrNotGitRepository
	return errors.As(err, &e)
}
