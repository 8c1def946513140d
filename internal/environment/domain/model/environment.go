package model

import (
	"net"
	"net/url"
	"time"
)

// MaskedPassword replaces any stored password in responses.
const MaskedPassword = "********"

// DefaultPort is used when a profile leaves the port empty.
const DefaultPort = "27017"

// Environment is a named connection profile for the primary database.
type Environment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hostname  string    `json:"hostname"`
	Port      string    `json:"port"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Database  string    `json:"database"`
	SSL       bool      `json:"ssl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Masked returns a copy safe to hand out over the API.
func (e Environment) Masked() Environment {
	if e.Password != "" {
		e.Password = MaskedPassword
	}
	return e
}

// ConnectionURI builds the mongodb:// URI for this profile.
func (e *Environment) ConnectionURI() string {
	port := e.Port
	if port == "" {
		port = DefaultPort
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(e.Hostname, port),
		Path:   "/",
	}
	if e.Username != "" {
		u.User = url.UserPassword(e.Username, e.Password)
	}
	return u.String()
}

// EnvironmentInput carries the user-editable fields of a profile.
type EnvironmentInput struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSL      bool   `json:"ssl"`
}
