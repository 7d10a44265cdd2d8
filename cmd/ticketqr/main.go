package main

import (
	"os"

	"github.com/ds124wfegd/ticketqr/internal/app"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := app.Execute(os.Args[1:]); err != nil {
		logrus.Fatalf("ticketqr: %s", err.Error())
	}
}
