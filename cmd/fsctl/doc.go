// Command fsctl manages files on a file server.
//
// With --server it talks to a running server over HTTP; otherwise it opens
// the configured home directory and works on it in-process.
//
//	fsctl --server http://localhost:8000 mkdir reports
//	fsctl --home /srv/files put q1.txt reports/
//	fsctl ls reports
//	fsctl get reports/q1.txt -
//	fsctl rm -r reports
package main
