// Package storage provides sandboxed file storage under a single home directory.
//
// The package is organized into:
//   - paths: Resolver, which confines caller paths to the home directory
//   - directory: directory creation and recursive listing
//   - transfer: streaming save and load of file content
//   - delete: removal of files and directories
//   - types: FileInfo, DirectoryInfo, FileList and Resource
//   - errors: the Kind taxonomy returned by every operation
//
// Containment:
//   - Every operation resolves its path first and fails with KindPathViolation
//     before touching the filesystem when the path leaves home
//   - Symlinks on existing ancestors are evaluated during resolution
//   - Mutations go through go-billy's bound OS filesystem as a second check
//
// Policies:
//   - Listings report regular files and directories, never follow symlinks,
//     and abort on the first read error
//   - Saves are written to a temporary sibling and renamed into place
//   - Delete refuses non-empty directories; DeleteAll is recursive
//
// Example Usage:
//
//	svc, err := storage.New(storage.HomeDir("/data"), storage.WithLogger(logger))
//	info, err := svc.SaveFile(ctx, "reports/q1.txt", strings.NewReader("hello"))
//	list, err := svc.ListDirectory(ctx, "reports")
package storage
