package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Catalog    *CatalogHandler
	Workshops  *WorkshopHandler
	Library    *LibraryHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if cfg.Catalog != nil {
		mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.Activities(w, r)
		})
		mux.HandleFunc("/purposes", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.Purposes(w, r)
		})
	}

	if cfg.Workshops != nil {
		mux.HandleFunc("/workshops", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Workshops.Generate(w, r)
		})
		mux.HandleFunc("/workshops/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/workshops/"), "/")
			switch rest {
			case "":
				http.NotFound(w, r)
				return
			case "preview":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Workshops.Preview(w, r)
				return
			case "regenerate":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Workshops.Regenerate(w, r)
				return
			}

			id, action, _ := strings.Cut(rest, "/")
			r = r.WithContext(ContextWithWorkshopID(r.Context(), id))
			switch action {
			case "sessions":
				switch r.Method {
				case http.MethodGet:
					cfg.Workshops.Sessions(w, r)
				case http.MethodDelete:
					cfg.Workshops.Discard(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case "replace", "edit", "start-time":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				switch action {
				case "replace":
					cfg.Workshops.Replace(w, r)
				case "edit":
					cfg.Workshops.Edit(w, r)
				default:
					cfg.Workshops.StartTime(w, r)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Library != nil {
		mux.HandleFunc("/library", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Library.List(w, r)
			case http.MethodPost:
				cfg.Library.Save(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/library/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/library/"), "/")
			switch rest {
			case "":
				http.NotFound(w, r)
				return
			case "drafts":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Library.SaveDraft(w, r)
				return
			case "autosave":
				switch r.Method {
				case http.MethodGet:
					cfg.Library.AutoSaved(w, r)
				case http.MethodPut:
					cfg.Library.AutoSave(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
				return
			}

			id, action, _ := strings.Cut(rest, "/")
			r = r.WithContext(ContextWithSavedID(r.Context(), id))
			switch action {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Library.Get(w, r)
				case http.MethodPut:
					cfg.Library.Update(w, r)
				case http.MethodDelete:
					cfg.Library.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "share":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Library.Share(w, r)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/shared/", func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.URL.Path, "/shared/")
			if token == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Library.Shared(w, r, token)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
