package main

import (
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"wuyrush.io/quire/common/logging"
	qe "wuyrush.io/quire/errors"
	md "wuyrush.io/quire/models"
	"wuyrush.io/quire/render"
	"wuyrush.io/quire/stores"
	"wuyrush.io/quire/stores/session"
)

const (
	msgSignInRequired  = "You must be signed in to do that."
	msgNameRequired    = "A name is required."
	msgTypeUnsupported = "Document type not supported."
	msgNameInvalid     = "Invalid document name."
	msgBadCredentials  = "Invalid credentials"
	msgTooManyAttempts = "Too many sign-in attempts. Try again later."
	msgWelcome         = "Welcome!"
	msgSignedOut       = "You have been signed out."
	msgUsernameTaken   = "Sorry, that username already exists."
	respMsgErrDocument = "error handling document"
	respMsgErrSignUp   = "error registering user"
)

// HandleDocIndex lists all documents in the storage root. No auth required.
func (s *quireServer) HandleDocIndex() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/index.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		files, err := s.DS.List()
		if err != nil {
			clog.WithError(err).Error("error listing documents")
			http.Error(w, respMsgErrDocument, err.StatusCode())
			return
		}
		v := md.IndexView{Files: files}
		if name, ok := sess.Username(); ok {
			v.Username = name
		}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, clog)
		execTemplateLog(tmpl, w, v, clog)
	}
}

// HandleDocShow emits a document's content: raw bytes with the right content
// type for text and images, a rendered page for markdown.
func (s *quireServer) HandleDocShow() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/document.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		name := chi.URLParam(r, "filename")
		flog := clog.WithField("filename", name)
		data, err := s.DS.Read(name)
		if err != nil {
			switch err.Code {
			case qe.ErrCodeNotFound, qe.ErrCodeInvalid:
				s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s does not exist.", name), flog)
			default:
				flog.WithError(err).Error("error reading document")
				http.Error(w, respMsgErrDocument, err.StatusCode())
			}
			return
		}
		content, rerr := render.Render(md.KindOf(name), data)
		if rerr != nil {
			// unrenderable kinds are rejected explicitly rather than served empty
			s.redirectWithMessage(w, r, sess, msgTypeUnsupported, flog)
			return
		}
		if content.Type != "" {
			w.Header().Set("Content-Type", content.Type)
			if _, werr := w.Write(content.Body); werr != nil {
				flog.WithError(werr).Error("error sending document data to requester")
			}
			return
		}
		v := md.DocView{Name: name, Body: content.Fragment}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, flog)
		execTemplateLog(tmpl, w, v, flog)
	}
}

func (s *quireServer) HandleDocNewForm() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/new.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		v := md.FormView{}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, clog)
		execTemplateLog(tmpl, w, v, clog)
	}
}

// HandleDocCreate creates an empty document. Rejects empty names and
// unsupported extensions with a form re-render.
func (s *quireServer) HandleDocCreate() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/new.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		filename := r.FormValue("filename")
		var rejected string
		switch {
		case filename == "":
			rejected = msgNameRequired
		case md.KindOf(filename) == md.KindUnknown:
			rejected = msgTypeUnsupported
		case stores.ValidName(filename) != nil:
			rejected = msgNameInvalid
		}
		if rejected != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			execTemplateLog(tmpl, w, md.FormView{Message: rejected, Filename: filename}, clog)
			return
		}
		if err := s.DS.Write(filename, []byte{}); err != nil {
			clog.WithError(err).WithField("filename", filename).Error("error creating document")
			http.Error(w, respMsgErrDocument, err.StatusCode())
			return
		}
		s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s has been created.", filename), clog)
	}
}

func (s *quireServer) HandleDocEditForm() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/edit.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		name := chi.URLParam(r, "filename")
		flog := clog.WithField("filename", name)
		data, err := s.DS.Read(name)
		if err != nil {
			switch err.Code {
			case qe.ErrCodeNotFound, qe.ErrCodeInvalid:
				s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s does not exist.", name), flog)
			default:
				flog.WithError(err).Error("error reading document for edit")
				http.Error(w, respMsgErrDocument, err.StatusCode())
			}
			return
		}
		v := md.FormView{Filename: name, Content: string(data)}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, flog)
		execTemplateLog(tmpl, w, v, flog)
	}
}

// HandleDocUpdate snapshots the document into its dated backup, then
// overwrites it with the submitted content.
func (s *quireServer) HandleDocUpdate() http.HandlerFunc {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		name := chi.URLParam(r, "filename")
		flog := clog.WithField("filename", name)
		doc := md.Document{Name: name}
		if err := s.DS.Copy(name, doc.BackupName(time.Now())); err != nil {
			switch err.Code {
			case qe.ErrCodeNotFound, qe.ErrCodeInvalid:
				s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s does not exist.", name), flog)
			default:
				flog.WithError(err).Error("error backing up document")
				http.Error(w, respMsgErrDocument, err.StatusCode())
			}
			return
		}
		if err := s.DS.Write(name, []byte(r.FormValue("content"))); err != nil {
			flog.WithError(err).Error("error updating document")
			http.Error(w, respMsgErrDocument, err.StatusCode())
			return
		}
		s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s has been updated.", name), flog)
	}
}

func (s *quireServer) HandleDocDelete() http.HandlerFunc {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		name := chi.URLParam(r, "filename")
		flog := clog.WithField("filename", name)
		if err := s.DS.Delete(name); err != nil {
			switch err.Code {
			case qe.ErrCodeNotFound, qe.ErrCodeInvalid:
				s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s does not exist.", name), flog)
			default:
				flog.WithError(err).Error("error deleting document")
				http.Error(w, respMsgErrDocument, err.StatusCode())
			}
			return
		}
		s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s has been deleted.", name), flog)
	}
}

// HandleDocDuplicate copies a document to its fixed duplicate name. The copy
// carries the raw stored bytes; markdown duplicates stay markdown source.
func (s *quireServer) HandleDocDuplicate() http.HandlerFunc {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		if !s.requireSignedIn(w, r, sess, clog) {
			return
		}
		name := chi.URLParam(r, "filename")
		flog := clog.WithField("filename", name)
		doc := md.Document{Name: name}
		if err := s.DS.Copy(name, doc.DuplicateName()); err != nil {
			switch err.Code {
			case qe.ErrCodeNotFound, qe.ErrCodeInvalid:
				s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s does not exist.", name), flog)
			default:
				flog.WithError(err).Error("error duplicating document")
				http.Error(w, respMsgErrDocument, err.StatusCode())
			}
			return
		}
		s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s duplicate has been created.", name), flog)
	}
}

func (s *quireServer) HandleAuthSignInForm() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/signin.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		v := md.AuthView{}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, clog)
		execTemplateLog(tmpl, w, v, clog)
	}
}

// HandleAuthSignIn verifies submitted credentials and transitions the session
// to signed-in. Failed attempts per client are throttled to slow down
// credential guessing.
func (s *quireServer) HandleAuthSignIn() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/signin.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		username := r.FormValue("username")
		key := clientKey(r)
		if !s.TH.Allow(key) {
			clog.WithField("client", key).Warn("throttling sign-in attempts")
			w.WriteHeader(http.StatusTooManyRequests)
			execTemplateLog(tmpl, w, md.AuthView{Message: msgTooManyAttempts, Username: username}, clog)
			return
		}
		if !s.CS.Verify(username, r.FormValue("password")) {
			s.TH.Record(key)
			w.WriteHeader(http.StatusUnprocessableEntity)
			execTemplateLog(tmpl, w, md.AuthView{Message: msgBadCredentials, Username: username}, clog)
			return
		}
		s.TH.Reset(key)
		sess.SignIn(username)
		s.redirectWithMessage(w, r, sess, msgWelcome, clog.WithField("username", username))
	}
}

func (s *quireServer) HandleAuthSignOut() http.HandlerFunc {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		sess.SignOut()
		s.redirectWithMessage(w, r, sess, msgSignedOut, clog)
	}
}

func (s *quireServer) HandleAuthSignUpForm() http.HandlerFunc {
	clog := logging.WithFuncName()
	tmpl := mustParse("templates/signup.html", clog)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		v := md.AuthView{}
		if msg, ok := sess.TakeMessage(); ok {
			v.Message = msg
		}
		s.saveSession(sess, w, r, clog)
		execTemplateLog(tmpl, w, v, clog)
	}
}

// HandleAuthSignUp persists a new credential. A taken username redirects back
// to the sign-up form with the conflict message and leaves the store untouched.
func (s *quireServer) HandleAuthSignUp() http.HandlerFunc {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.SM.Current(r)
		username := r.FormValue("username")
		if err := s.CS.Register(username, r.FormValue("password")); err != nil {
			if err.Code == qe.ErrCodeExisted {
				sess.SetMessage(msgUsernameTaken)
				s.saveSession(sess, w, r, clog)
				http.Redirect(w, r, "/users/signup", http.StatusFound)
				return
			}
			clog.WithError(err).WithField("username", username).Error("error registering user")
			http.Error(w, respMsgErrSignUp, err.StatusCode())
			return
		}
		s.redirectWithMessage(w, r, sess, fmt.Sprintf("%s was added to the user database.", username), clog)
	}
}

// -------------- gates and utils --------------

// requireSignedIn gates mutating actions: anonymous visitors get a one-shot
// notice and a redirect home, and the action never runs.
func (s *quireServer) requireSignedIn(w http.ResponseWriter, r *http.Request, sess *session.Session, clog *logrus.Entry) bool {
	if sess.SignedIn() {
		return true
	}
	s.redirectWithMessage(w, r, sess, msgSignInRequired, clog)
	return false
}

// redirectWithMessage queues a one-shot message for the next rendered page and
// sends the visitor home.
func (s *quireServer) redirectWithMessage(w http.ResponseWriter, r *http.Request, sess *session.Session, msg string, clog *logrus.Entry) {
	sess.SetMessage(msg)
	s.saveSession(sess, w, r, clog)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *quireServer) saveSession(sess *session.Session, w http.ResponseWriter, r *http.Request, clog *logrus.Entry) {
	if err := sess.Save(r, w); err != nil {
		clog.WithError(err).Error("error saving session")
	}
}

// clientKey identifies the remote client for sign-in throttling purposes.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// fail early on a missing template since page rendering is critical path
func mustParse(path string, clog *logrus.Entry) *template.Template {
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		clog.WithError(err).WithField("templatePath", path).Fatal("html template not loaded")
	}
	return tmpl
}

func execTemplateLog(t *template.Template, w io.Writer, data interface{}, log *logrus.Entry) {
	if err := t.Execute(w, data); err != nil {
		log.WithError(err).Error("error executing html template")
	}
}
