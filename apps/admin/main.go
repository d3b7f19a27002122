package main

import (
	"log"
	"os"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/admin"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
	"github.com/tutorpost/backend/storage/database"
	pgrepos "github.com/tutorpost/backend/storage/database/pg"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:         db,
		adminSvc:   admin.NewService(pgrepos.NewAdminRepository(db)),
		tutorSvc:   tutor.NewService(pgrepos.NewTutorRepository(db)),
		studentSvc: student.NewService(pgrepos.NewStudentRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
