package main

import (
	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
)

// addUser updates or creates a user record matched by email.
func (cli *commandLine) addUser(name, email, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	rec := collection.Record{
		"name":     name,
		"email":    email,
		"password": pwd,
	}

	if existing := cli.usrSvc.FindByField("email", email); len(existing) > 0 {
		_, err := cli.usrSvc.Replace(existing[0].ID(), rec)
		return err
	}
	_, err := cli.usrSvc.Create(rec)
	return err
}
