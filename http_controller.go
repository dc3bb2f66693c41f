package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/festbite/go-auth/middleware/jwtware"
)

// AuthControllerRoutes holds the paths the controller mounts its handlers on.
type AuthControllerRoutes struct {
	Register       string
	Login          string
	Logout         string
	PasswordForgot string
	PasswordReset  string
}

// AuthController exposes the authentication flows as a JSON HTTP API.
type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       *Auther
	Opts         Config
	Notifier     Notifier
	ActivitySink ActivitySink
	Routes       *AuthControllerRoutes
	ErrorHandler fiber.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerConfig(opts Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Opts = opts
		return c
	}
}

func WithControllerNotifier(notifier Notifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = normalizeNotifier(notifier)
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ActivitySink = normalizeActivitySink(sink)
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		Notifier:     noopNotifier{},
		ActivitySink: noopActivitySink{},
		ErrorHandler: DefaultErrorHandler,
		Routes: &AuthControllerRoutes{
			Register:       "/auth/register",
			Login:          "/auth/login",
			Logout:         "/auth/logout",
			PasswordForgot: "/auth/password/forgot",
			PasswordReset:  "/auth/password/reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Opts == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the authentication endpoints on the app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).Name("register.post")
	app.Post(controller.Routes.Login, controller.LoginPost).Name("sign-in.post")
	app.Post(controller.Routes.Logout, controller.LogoutPost).Name("sign-out.post")
	app.Post(controller.Routes.PasswordForgot, controller.PasswordForgotPost).Name("pwd-forgot.post")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).Name("pwd-reset.post")

	return controller
}

// RegistrationCreatePayload is the registration body
type RegistrationCreatePayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

// RegisterPost creates the account and logs the new user in.
func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return a.ErrorHandler(c, badRequest(err, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return a.ErrorHandler(c, validationError(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	var created *User
	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	// the handler stores the email lowercased; log in with the stored value
	token, err := a.Auther.Login(c.UserContext(), created.Email, payload.Password)
	if err != nil {
		a.Logger.Error("register user login error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    created,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginPost verifies credentials and returns a bearer token.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return a.ErrorHandler(c, badRequest(err, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, validationError(err))
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(c.UserContext(), payload.Identifier)
	if err != nil {
		a.Logger.Error("login load user error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.DisplayName(),
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// LogoutPost revokes the current session. Repeated logouts succeed.
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	raw, err := jwtware.ExtractRawTokenFromContext(c, jwtware.GetExtractors(
		a.Opts.GetTokenLookup(),
		a.Opts.GetAuthScheme(),
	))
	if err != nil {
		return a.ErrorHandler(c, ErrUnauthenticated)
	}

	if err := a.Auther.Logout(c.UserContext(), raw); err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PasswordForgotPayload holds values for a password reset request
type PasswordForgotPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r PasswordForgotPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordForgotPost starts a reset flow. The response is the same whether
// or not the email has an account.
func (a *AuthController) PasswordForgotPost(c *fiber.Ctx) error {
	payload := new(PasswordForgotPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("password forgot parse payload: ", "error", err)
		return a.ErrorHandler(c, badRequest(err, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, validationError(err))
	}

	handler := NewInitializePasswordResetHandler(a.Repo, a.Opts).
		WithNotifier(a.Notifier).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	}); err != nil {
		a.Logger.Error("password forgot error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "if the account exists, a reset link has been sent",
	})
}

// PasswordResetPayload completes a password reset
type PasswordResetPayload struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r PasswordResetPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

// PasswordResetPost verifies the secret and sets the new password.
func (a *AuthController) PasswordResetPost(c *fiber.Ctx) error {
	payload := new(PasswordResetPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("password reset parse payload: ", "error", err)
		return a.ErrorHandler(c, badRequest(err, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, validationError(err))
	}

	handler := NewFinalizePasswordResetHandler(a.Repo).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := handler.Execute(c.UserContext(), FinalizePasswordResetMessage{
		Email:    payload.Email,
		Secret:   payload.Code,
		Password: payload.Password,
	}); err != nil {
		a.Logger.Error("password reset error: ", "error", err)
		return a.ErrorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DefaultErrorHandler maps rich errors to JSON responses with stable text
// codes. Internal failures never leak detail to the client.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	textCode := "INTERNAL_ERROR"
	message := "internal server error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Code {
		case goerrors.CodeUnauthorized:
			status = fiber.StatusUnauthorized
		case goerrors.CodeForbidden:
			status = fiber.StatusForbidden
		case goerrors.CodeConflict:
			status = fiber.StatusConflict
		case goerrors.CodeNotFound:
			status = fiber.StatusNotFound
		case goerrors.CodeBadRequest:
			status = fiber.StatusBadRequest
		default:
			switch richErr.Category {
			case goerrors.CategoryValidation, goerrors.CategoryBadInput:
				status = fiber.StatusBadRequest
			}
		}

		if status != fiber.StatusInternalServerError {
			if richErr.TextCode != "" {
				textCode = richErr.TextCode
			} else {
				textCode = "REQUEST_ERROR"
			}
			message = richErr.Message
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"code":    textCode,
		"error":   message,
	})
}

func badRequest(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, msg).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("BAD_REQUEST")
}

func validationError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("VALIDATION_ERROR")
}
