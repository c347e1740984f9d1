// Package files locates chart exports on disk.
//
// The configured data path may name either a single export or a directory
// of them. In the second case Discovery.ResolveExport picks the most
// recently modified .csv or .xlsx file so dropping a fresh export next to
// the old ones is enough to refresh the dashboard on the next start.
//
//	path, err := files.NewDiscovery("").ResolveExport("data")
package files
