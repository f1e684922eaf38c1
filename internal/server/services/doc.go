// Package services holds the server's business logic:
//
//   - UserService: registration, login and refresh-token rotation.
//   - DocumentService: per-user mission/reward collections and the account.
//   - BackupService: presigned S3 upload URLs for encrypted client snapshots.
//
// Services own transactions; repositories only see a dbx.DBTX.
package services
