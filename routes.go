package main

import (
	"github.com/go-chi/chi/v5"
	mw "wuyrush.io/quire/common/middleware"
)

// set up routes. Static segments like /new and /users/... must win over the
// /{filename} wildcard mounted at the same position, which chi resolves by
// route priority.
func (s *quireServer) SetupMux() {
	r := chi.NewRouter()
	r.Use(mw.PanicRecoverer(), mw.RequestTagger(), mw.AccessLogger())

	r.Get("/", s.HandleDocIndex())
	r.Get("/new", s.HandleDocNewForm())
	r.Post("/create", s.HandleDocCreate())
	// user related
	r.Route("/users", func(r chi.Router) {
		r.Get("/signin", s.HandleAuthSignInForm())
		r.Post("/signin", s.HandleAuthSignIn())
		r.Post("/signout", s.HandleAuthSignOut())
		r.Get("/signup", s.HandleAuthSignUpForm())
		r.Post("/signup", s.HandleAuthSignUp())
	})
	// document routes keyed by filename
	r.Get("/{filename}", s.HandleDocShow())
	r.Get("/{filename}/edit", s.HandleDocEditForm())
	r.Post("/{filename}", s.HandleDocUpdate())
	r.Post("/{filename}/delete", s.HandleDocDelete())
	r.Post("/{filename}/duplicate", s.HandleDocDuplicate())

	s.Router = r
}
