package mockapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"futureproof/internal/onboarding"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultRole = "student"

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}
	if !emailPattern.MatchString(email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}
	if len(req.Password) < MinPasswordLen {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": fmt.Sprintf("Password must be at least %d characters long", MinPasswordLen)})
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = defaultRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &User{FullName: strings.TrimSpace(req.FullName), Email: email, Role: role}
	if err := s.store.CreateUser(user, hash); err != nil {
		if errors.Is(err, ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User with this email already exists"})
		}
		s.logger.Error("create user failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	s.logger.Info("user registered", zap.String("email", email), zap.String("role", role))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "User created successfully",
		"user":         user,
		"access_token": token,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	user, hash, err := s.store.UserByEmail(email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}
	if err != nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message":      "Login successful",
		"user":         user,
		"access_token": token,
	})
}

// requireToken rejects requests without a valid bearer token. Its error
// bodies use "msg", as JWT middleware in front of the real backend does.
func (s *Server) requireToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Missing Authorization Header"})
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"msg": "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'"})
	}

	userID, err := s.tokens.Verify(parts[1])
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Token has expired"})
	case err != nil:
		s.logger.Debug("token rejected", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"msg": "Signature verification failed"})
	}

	c.Locals("user_id", userID)
	return c.Next()
}

// currentUser loads the account of the verified token.
func (s *Server) currentUser(c *fiber.Ctx) (*User, error) {
	raw, _ := c.Locals("user_id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.store.UserByID(id)
}

func (s *Server) me(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("user lookup failed", zap.Error(err))
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"user": user})
}

func (s *Server) submitOnboarding(c *fiber.Ctx) error {
	current, err := s.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "User not found"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Expected multipart/form-data"})
	}

	values := make(map[onboarding.Field]string, len(form.Value))
	for key, vs := range form.Value {
		if len(vs) > 0 {
			values[onboarding.Field(key)] = vs[0]
		}
	}

	answers := onboarding.NewAnswers()
	if err := answers.SetAll(values); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": err.Error()})
	}
	if field, ok := firstMissing(answers); ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"msg": fmt.Sprintf("Missing required field: %s", field)})
	}

	var cvName string
	if files := form.File[string(onboarding.FieldCVFile)]; len(files) > 0 {
		cv, err := onboarding.NewAttachment(files[0].Filename, nil)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": err.Error()})
		}
		cvName = cv.Name
	}

	stored := make(map[string]string, len(onboarding.Rules))
	for _, r := range onboarding.Rules {
		if r.Field != onboarding.FieldCVFile {
			stored[string(r.Field)] = answers.Get(r.Field)
		}
	}

	user, err := s.store.CompleteOnboarding(current.ID, stored, cvName)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "User not found"})
		}
		s.logger.Error("saving onboarding failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"msg": "Failed to save onboarding"})
	}

	s.logger.Info("onboarding submitted",
		zap.String("email", user.Email),
		zap.String("career_path", stored[string(onboarding.FieldCareerPath)]),
		zap.Bool("cv_attached", cvName != ""))
	return c.JSON(fiber.Map{
		"message":    "Onboarding submitted successfully",
		"user":       user,
		"assessment": stored,
	})
}

// firstMissing returns the first field, in form order, that the rules still
// require.
func firstMissing(a *onboarding.Answers) (onboarding.Field, bool) {
	for _, step := range onboarding.Steps {
		errs := onboarding.Validate(step, a)
		if len(errs) == 0 {
			continue
		}
		for _, r := range onboarding.StepRules(step) {
			if _, missing := errs[r.Field]; missing {
				return r.Field, true
			}
		}
	}
	return "", false
}
