// Package testsupport hosts an in-process imitation of the library
// backend, close enough to the real REST contract to exercise the
// client end to end: form-encoded login issuing HS256 tokens, bearer
// authentication with FastAPI-style {"detail": ...} failures, and an
// in-memory catalog with borrow/return bookkeeping.
package testsupport

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

const tokenTTL = time.Hour

type account struct {
	user domain.User
	hash []byte
}

// Backend is the fake server. Obtain an http.Handler with Handler and
// serve it through httptest.
type Backend struct {
	e      *echo.Echo
	secret []byte

	mu           sync.Mutex
	users        map[int64]*account
	books        map[int64]*domain.Book
	records      map[int64]*domain.BorrowRecord
	nextUserID   int64
	nextBookID   int64
	nextRecordID int64

	meCalls atomic.Int64
}

func NewBackend() *Backend {
	b := &Backend{
		secret:  []byte("testsupport-secret"),
		users:   make(map[int64]*account),
		books:   make(map[int64]*domain.Book),
		records: make(map[int64]*domain.BorrowRecord),
	}
	b.e = b.buildRouter()
	return b
}

// Handler returns the backend as a plain http.Handler.
func (b *Backend) Handler() http.Handler {
	return b.e
}

// MeCalls reports how many GET /users/me requests were served. Used to
// assert that identity rehydration happens at most once per window.
func (b *Backend) MeCalls() int64 {
	return b.meCalls.Load()
}

// AddUser registers a user with a bcrypt-hashed password and returns
// the stored record.
func (b *Backend) AddUser(username, password, role string) domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextUserID++
	u := domain.User{
		ID:        b.nextUserID,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	b.users[u.ID] = &account{user: u, hash: hash}
	return u
}

// AddBook seeds a catalog entry.
func (b *Backend) AddBook(bookNo, title, author string) domain.Book {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextBookID++
	book := domain.Book{
		ID:        b.nextBookID,
		BookNo:    bookNo,
		Title:     title,
		Author:    author,
		Status:    domain.BookAvailable,
		CreatedAt: time.Now().UTC(),
	}
	b.books[book.ID] = &book
	return book
}

// IssueToken mints a valid bearer token for an existing user, bypassing
// the login endpoint.
func (b *Backend) IssueToken(userID int64) string {
	return b.signToken(userID, time.Now().Add(tokenTTL))
}

// IssueExpiredToken mints a structurally valid but expired token.
func (b *Backend) IssueExpiredToken(userID int64) string {
	return b.signToken(userID, time.Now().Add(-time.Minute))
}

func (b *Backend) signToken(userID int64, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (b *Backend) buildRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.POST("/auth/login", b.login)

	authed := e.Group("", b.requireAuth)
	authed.GET("/users/me", b.me)
	authed.PUT("/users/me/password", b.changePassword)
	authed.POST("/users/", b.createUser, b.requireAdmin)
	authed.GET("/users/", b.listUsers, b.requireAdmin)
	authed.PUT("/users/:id/role", b.updateRole, b.requireAdmin)

	authed.GET("/books/", b.listBooks)
	authed.POST("/books/", b.createBook, b.requireAdmin)
	authed.GET("/books/:id", b.getBook)
	authed.PUT("/books/:id", b.updateBook, b.requireAdmin)
	authed.DELETE("/books/:id", b.deleteBook, b.requireAdmin)
	authed.POST("/books/:id/borrow", b.borrowBook)
	authed.POST("/books/:id/return", b.returnBook)
	authed.GET("/books/:id/records", b.bookRecords)

	authed.GET("/borrow-records/", b.myRecords)
	authed.PUT("/borrow-records/:id/note", b.updateNote)

	return e
}

func (b *Backend) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	b.mu.Lock()
	var acct *account
	for _, a := range b.users {
		if a.user.Username == username {
			acct = a
			break
		}
	}
	b.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return detail(c, http.StatusUnauthorized, "incorrect username or password")
	}

	return c.JSON(http.StatusOK, domain.Token{
		AccessToken: b.IssueToken(acct.user.ID),
		TokenType:   "bearer",
	})
}

func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return detail(c, http.StatusUnauthorized, "not authenticated")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return b.secret, nil
		})
		if err != nil || !tkn.Valid {
			return detail(c, http.StatusUnauthorized, "could not validate credentials")
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return detail(c, http.StatusUnauthorized, "could not validate credentials")
		}

		b.mu.Lock()
		acct, ok := b.users[userID]
		b.mu.Unlock()
		if !ok {
			return detail(c, http.StatusUnauthorized, "could not validate credentials")
		}

		c.Set("user", acct.user)
		return next(c)
	}
}

func (b *Backend) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := c.Get("user").(domain.User)
		if u.Role != domain.RoleAdmin {
			return detail(c, http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	}
}

func (b *Backend) me(c echo.Context) error {
	b.meCalls.Add(1)
	return c.JSON(http.StatusOK, c.Get("user").(domain.User))
}

func (b *Backend) changePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	u := c.Get("user").(domain.User)
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.users[u.ID]
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(req.OldPassword)) != nil {
		return detail(c, http.StatusBadRequest, "incorrect old password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "hash failure")
	}
	acct.hash = hash
	return c.JSON(http.StatusOK, acct.user)
}

func (b *Backend) createUser(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	b.mu.Lock()
	for _, a := range b.users {
		if a.user.Username == req.Username {
			b.mu.Unlock()
			return detail(c, http.StatusConflict, "username already exists")
		}
	}
	b.mu.Unlock()

	u := b.AddUser(req.Username, req.Password, req.Role)
	return c.JSON(http.StatusCreated, u)
}

func (b *Backend) listUsers(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]domain.User, 0, len(b.users))
	for _, a := range b.users {
		users = append(users, a.user)
	}
	return c.JSON(http.StatusOK, users)
}

func (b *Backend) updateRole(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid user id")
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.users[id]
	if !ok {
		return detail(c, http.StatusNotFound, "user not found")
	}
	acct.user.Role = req.Role
	return c.JSON(http.StatusOK, acct.user)
}

func (b *Backend) listBooks(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	books := make([]domain.Book, 0, len(b.books))
	for _, bk := range b.books {
		books = append(books, *bk)
	}
	return c.JSON(http.StatusOK, books)
}

func (b *Backend) createBook(c echo.Context) error {
	var req struct {
		BookNo    string `json:"book_no"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		ISBN      string `json:"isbn"`
		Publisher string `json:"publisher"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	book := b.AddBook(req.BookNo, req.Title, req.Author)
	b.mu.Lock()
	stored := b.books[book.ID]
	stored.ISBN = req.ISBN
	stored.Publisher = req.Publisher
	book = *stored
	b.mu.Unlock()
	return c.JSON(http.StatusCreated, book)
}

// findBook resolves the :id param. On failure the error response has
// already been written and ok is false.
func (b *Backend) findBook(c echo.Context) (*domain.Book, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = detail(c, http.StatusBadRequest, "invalid book id")
		return nil, false
	}
	book, ok := b.books[id]
	if !ok {
		_ = detail(c, http.StatusNotFound, "book not found")
		return nil, false
	}
	return book, true
}

func (b *Backend) getBook(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, *book)
}

func (b *Backend) updateBook(c echo.Context) error {
	var req struct {
		BookNo    *string `json:"book_no"`
		Title     *string `json:"title"`
		Author    *string `json:"author"`
		ISBN      *string `json:"isbn"`
		Publisher *string `json:"publisher"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}
	if req.BookNo != nil {
		book.BookNo = *req.BookNo
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	return c.JSON(http.StatusOK, *book)
}

func (b *Backend) deleteBook(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}
	delete(b.books, book.ID)
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) borrowBook(c echo.Context) error {
	u := c.Get("user").(domain.User)

	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}
	if book.Status != domain.BookAvailable {
		return detail(c, http.StatusBadRequest, "book is not available")
	}

	book.Status = domain.BookBorrowed
	b.nextRecordID++
	rec := &domain.BorrowRecord{
		ID:         b.nextRecordID,
		BookID:     book.ID,
		UserID:     u.ID,
		BorrowTime: time.Now().UTC(),
	}
	b.records[rec.ID] = rec

	out := *rec
	bk := *book
	out.Book = &bk
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) returnBook(c echo.Context) error {
	u := c.Get("user").(domain.User)

	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}

	for _, rec := range b.records {
		if rec.BookID == book.ID && rec.UserID == u.ID && rec.ReturnTime == nil {
			now := time.Now().UTC()
			rec.ReturnTime = &now
			book.Status = domain.BookAvailable
			out := *rec
			bk := *book
			out.Book = &bk
			return c.JSON(http.StatusOK, out)
		}
	}
	return detail(c, http.StatusBadRequest, "no open borrow record")
}

func (b *Backend) bookRecords(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.findBook(c)
	if !ok {
		return nil
	}

	out := make([]domain.BorrowRecord, 0)
	for _, rec := range b.records {
		if rec.BookID != book.ID {
			continue
		}
		r := *rec
		if acct, ok := b.users[rec.UserID]; ok {
			u := acct.user
			r.User = &u
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) myRecords(c echo.Context) error {
	u := c.Get("user").(domain.User)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.BorrowRecord, 0)
	for _, rec := range b.records {
		if rec.UserID != u.ID {
			continue
		}
		r := *rec
		if bk, ok := b.books[rec.BookID]; ok {
			book := *bk
			r.Book = &book
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) updateNote(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusBadRequest, "invalid record id")
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}

	u := c.Get("user").(domain.User)
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	if !ok {
		return detail(c, http.StatusNotFound, "record not found")
	}
	if rec.UserID != u.ID {
		return detail(c, http.StatusForbidden, "not your record")
	}
	rec.Note = req.Note
	return c.JSON(http.StatusOK, *rec)
}
