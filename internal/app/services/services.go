// Package services holds the application logic between controllers and
// repositories:
//   - AuthService: accounts, sessions and the session event stream
//   - StudentService: validated reads and writes of student records
package services
