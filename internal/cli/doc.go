// Package cli is the interactive front end of authcore.
//
// It prints a numbered menu of the operations the controller currently
// allows, reads the user's choice and the values each operation asks for,
// and turns the controller's results and errors into short messages.
// Passwords are read from the terminal without echo.
package cli
