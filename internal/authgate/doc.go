// Package authgate implements the password-gated unlock/lock state
// machine in front of the protected panels.
//
// There are two fully independent auth domains, settings and logs; each
// panel owns one Gate instance. Unlock state is never persisted across a
// panel close/reopen cycle: closing the panel locks its domain, and a
// reopened panel always starts locked. Password verification is
// delegated to the backend; passwords are opaque strings here.
package authgate
