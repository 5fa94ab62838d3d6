package accounts

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// BirthdayWindowDays is the lookahead of the upcoming birthdays listing
var BirthdayWindowDays = 7

// RegisterContactRoutes mounts the token protected address book
// endpoints. The birthdays route registers before the :id route so the
// literal segment is not captured as a contact id.
func RegisterContactRoutes[T any](app router.Router[T], opts ...ContactsControllerOption) {
	controller := NewContactsController(opts...)

	app.
		Get(controller.Routes.Birthdays, controller.Protected(controller.BirthdaysGet)).
		SetName("contacts-birthdays.get")

	app.
		Get(controller.Routes.Contacts, controller.Protected(controller.ListGet)).
		SetName("contacts.list")

	app.
		Get(fmt.Sprintf("%s/:id", controller.Routes.Contacts), controller.Protected(controller.DetailGet)).
		SetName("contacts.get")

	app.
		Post(controller.Routes.Contacts, controller.Protected(controller.CreatePost)).
		SetName("contacts.post")

	app.
		Put(fmt.Sprintf("%s/:id", controller.Routes.Contacts), controller.Protected(controller.UpdatePut)).
		SetName("contacts.put")

	app.
		Delete(fmt.Sprintf("%s/:id", controller.Routes.Contacts), controller.Protected(controller.RemoveDelete)).
		SetName("contacts.delete")
}

type ContactsControllerRoutes struct {
	Contacts  string
	Birthdays string
}

type ContactsController struct {
	Logger       Logger
	Repo         RepositoryManager
	ContextKey   string
	Protected    router.MiddlewareFunc
	Routes       *ContactsControllerRoutes
	ErrorHandler router.ErrorHandler
}

type ContactsControllerOption func(*ContactsController) *ContactsController

func NewContactsController(opts ...ContactsControllerOption) *ContactsController {
	c := &ContactsController{
		Logger:       defLogger{},
		ContextKey:   "user",
		ErrorHandler: defaultErrHandler,
		Routes: &ContactsControllerRoutes{
			Contacts:  "/contacts",
			Birthdays: "/contacts/birthdays",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in contacts controller...")
	}

	if c.Protected == nil {
		panic("Missing auth middleware in contacts controller...")
	}

	return c
}

func WithContactsLogger(l Logger) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithContactsRepo(repo RepositoryManager) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		c.Repo = repo
		return c
	}
}

func WithContactsProtected(mw router.MiddlewareFunc) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		c.Protected = mw
		return c
	}
}

func WithContactsContextKey(key string) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithContactsErrorHandler(h router.ErrorHandler) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		if h != nil {
			c.ErrorHandler = h
		}
		return c
	}
}

// ContactRequest is the create/update payload for a contact
type ContactRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone_number" json:"phone_number"`
	BirthDate string `form:"birth_date" json:"birth_date"`
	Notes     string `form:"additional_info" json:"additional_info"`
}

// Validate will run validation rules
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(3, 20)),
		validation.Field(&r.BirthDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
}

func (r ContactRequest) record() (*Contact, error) {
	birth, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid birth date").
			WithCode(goerrors.CodeBadRequest)
	}

	return &Contact{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: birth,
		Notes:     r.Notes,
	}, nil
}

func (c *ContactsController) ListGet(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	skip, _ := strconv.Atoi(ctx.Query("skip", "0"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))

	records, err := c.Repo.Contacts().ListByUser(ctx.Context(), user.ID, ContactFilter{
		FirstName: ctx.Query("first_name", ""),
		LastName:  ctx.Query("last_name", ""),
		Email:     ctx.Query("email", ""),
		Offset:    skip,
		Limit:     limit,
	})
	if err != nil {
		c.Logger.Error("contacts list", "error", err)
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list contacts"))
	}

	return ctx.JSON(http.StatusOK, records)
}

func (c *ContactsController) DetailGet(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	id, err := contactID(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	record, err := c.Repo.Contacts().GetByID(ctx.Context(), user.ID, id)
	if err != nil {
		return c.ErrorHandler(ctx, contactLookupError(err))
	}

	return ctx.JSON(http.StatusOK, record)
}

func (c *ContactsController) CreatePost(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(ContactRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("contact parse payload", "error", err)
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	record, err := payload.record()
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	record.UserID = user.ID

	created, err := c.Repo.Contacts().Create(ctx.Context(), record)
	if err != nil {
		c.Logger.Error("contact create", "error", err)
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create contact"))
	}

	return ctx.JSON(http.StatusCreated, created)
}

func (c *ContactsController) UpdatePut(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	id, err := contactID(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(ContactRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("contact parse payload", "error", err)
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "Error validating payload").
			WithCode(goerrors.CodeBadRequest))
	}

	record, err := payload.record()
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	record.ID = id

	updated, err := c.Repo.Contacts().Update(ctx.Context(), user.ID, record)
	if err != nil {
		return c.ErrorHandler(ctx, contactLookupError(err))
	}

	return ctx.JSON(http.StatusOK, updated)
}

func (c *ContactsController) RemoveDelete(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	id, err := contactID(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	removed, err := c.Repo.Contacts().Delete(ctx.Context(), user.ID, id)
	if err != nil {
		return c.ErrorHandler(ctx, contactLookupError(err))
	}

	return ctx.JSON(http.StatusOK, removed)
}

func (c *ContactsController) BirthdaysGet(ctx router.Context) error {
	user, err := sessionUser(ctx, c.Repo, c.ContextKey)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	records, err := c.Repo.Contacts().UpcomingBirthdays(ctx.Context(), user.ID, time.Now(), BirthdayWindowDays)
	if err != nil {
		c.Logger.Error("contacts birthdays", "error", err)
		return c.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list upcoming birthdays"))
	}

	return ctx.JSON(http.StatusOK, records)
}

func contactID(ctx router.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid contact id").
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func contactLookupError(err error) error {
	if goerrors.IsNotFound(err) {
		return ErrContactNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "contact lookup failed")
}
