package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
	"github.com/escolaware/secretaria/storage/jsonfile"
)

func main() {
	conf := core.NewConfig()

	validate := validator.New()
	collection.InitValidators(validate, newTranslator())

	db, err := jsonfile.Open(conf)
	if err != nil {
		log.Fatalf("setting up storage: %v", err)
	}
	usrSvc, err := collection.NewService(
		collection.Users,
		db.Collection(collection.Users.Name),
		validate,
		collection.WithPasswordHashing("password"),
	)
	if err != nil {
		log.Fatalf("loading users collection: %v", err)
	}

	cli := commandLine{usrSvc: usrSvc}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		log.Fatalf("%v", err)
	}
}

func newTranslator() ut.Translator {
	ptBR := pt_BR.New()
	uni := ut.New(ptBR, ptBR)
	translator, _ := uni.GetTranslator("pt_BR")
	return translator
}
