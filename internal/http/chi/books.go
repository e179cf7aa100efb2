package chi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/book-manager/book"
)

// maxFormMemory bounds the in-memory part of a multipart form, larger files spill to disk
const maxFormMemory = 32 << 20

/*
* Representa o livro na camada web
 */
type bookView struct {
	ID         int64
	Title      string
	Author     string
	Year       string
	FrontImage string
	BackImage  string
	HasCover   bool
}

func newBookView(b book.Book) bookView {
	v := bookView{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		FrontImage: b.FrontImage,
		BackImage:  b.BackImage,
		HasCover:   b.HasCover(),
	}
	if b.Year != nil {
		v.Year = strconv.Itoa(*b.Year)
	}
	return v
}

func getBooks(bookService book.UseCase, flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		all, err := bookService.List(r.Context(), query)
		if err != nil {
			serverError(w, r, err)
			return
		}
		result := make([]bookView, 0, len(all))
		for _, b := range all {
			result = append(result, newBookView(b))
		}
		render(w, r, indexPage, pageData{
			Flashes: flashes.pop(w, r),
			Books:   result,
			Query:   query,
		})
	})
}

func getAddForm(flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render(w, r, addPage, pageData{Flashes: flashes.pop(w, r)})
	})
}

func postBook(bookService book.UseCase, flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, front, back, err := readBookForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer front.close()
		defer back.close()

		_, err = bookService.Create(r.Context(), in, front.upload, back.upload)
		var verr *book.ValidationError
		switch {
		case errors.As(err, &verr):
			logRejected(r, verr)
			flashes.redirect(w, r, "/add", flashDanger, verr.Error())
		case err != nil:
			serverError(w, r, err)
		default:
			flashes.redirect(w, r, "/", flashSuccess, "Book added successfully.")
		}
	})
}

func getEditForm(bookService book.UseCase, flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r)
		if !ok {
			return
		}
		b, err := bookService.Get(r.Context(), id)
		switch {
		case errors.Is(err, book.ErrNotFound):
			flashes.redirect(w, r, "/", flashDanger, "Book not found.")
			return
		case err != nil:
			serverError(w, r, err)
			return
		}
		view := newBookView(b)
		render(w, r, editPage, pageData{
			Flashes: flashes.pop(w, r),
			Book:    &view,
		})
	})
}

func postEditBook(bookService book.UseCase, flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r)
		if !ok {
			return
		}
		in, front, back, err := readBookForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer front.close()
		defer back.close()

		_, err = bookService.Update(r.Context(), id, in, front.upload, back.upload)
		var verr *book.ValidationError
		switch {
		case errors.Is(err, book.ErrNotFound):
			flashes.redirect(w, r, "/", flashDanger, "Book not found.")
		case errors.As(err, &verr):
			logRejected(r, verr)
			flashes.redirect(w, r, fmt.Sprintf("/edit/%d", id), flashDanger, verr.Error())
		case err != nil:
			serverError(w, r, err)
		default:
			flashes.redirect(w, r, "/", flashSuccess, "Book updated successfully.")
		}
	})
}

func deleteBook(bookService book.UseCase, flashes *flasher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r)
		if !ok {
			return
		}
		if err := bookService.Delete(r.Context(), id); err != nil {
			serverError(w, r, err)
			return
		}
		flashes.redirect(w, r, "/", flashSuccess, "Book deleted.")
	})
}

// bookID answers 404 when the path id does not fit an int64
func bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

type formFile struct {
	upload book.Upload
	file   multipart.File
}

func (f formFile) close() {
	if f.file != nil {
		f.file.Close()
	}
}

// readBookForm accepts both multipart and urlencoded bodies
func readBookForm(r *http.Request) (book.Input, formFile, formFile, error) {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return book.Input{}, formFile{}, formFile{}, fmt.Errorf("parsing form: %w", err)
	}
	in := book.Input{
		Title:  r.PostFormValue("title"),
		Author: r.PostFormValue("author"),
		Year:   r.PostFormValue("year"),
	}
	front, err := readFormFile(r, "front_image")
	if err != nil {
		return book.Input{}, formFile{}, formFile{}, err
	}
	back, err := readFormFile(r, "back_image")
	if err != nil {
		front.close()
		return book.Input{}, formFile{}, formFile{}, err
	}
	return in, front, back, nil
}

func readFormFile(r *http.Request, field string) (formFile, error) {
	if r.MultipartForm == nil {
		return formFile{}, nil
	}
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return formFile{}, nil
	}
	if err != nil {
		return formFile{}, fmt.Errorf("reading %s: %w", field, err)
	}
	return formFile{
		upload: book.Upload{Filename: header.Filename, Content: f},
		file:   f,
	}, nil
}

func logRejected(r *http.Request, verr *book.ValidationError) {
	log := httplog.LogEntry(r.Context())
	log.Info().Str("kind", verr.Kind.String()).Msg("book input rejected")
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log := httplog.LogEntry(r.Context())
	log.Error().Err(err).Msg("handling book request")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
