package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role determines what a user account may do on the platform.
type Role string

// Possible user roles.
const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleAdmin  Role = "admin"
)

// Common validation errors for User.
var (
	ErrEmptyUserID           = errors.New("user ID cannot be empty")
	ErrEmptyEmail            = errors.New("email cannot be empty")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrEmptyDisplayName      = errors.New("display name cannot be empty")
	ErrInvalidRole           = errors.New("invalid user role")
	ErrChildCannotHaveChild  = errors.New("a child account cannot own child accounts")
	ErrChildTooOld           = errors.New("a child account cannot have an age of 18 or older")
	ErrNotAChildAccount      = errors.New("operation only valid for child accounts")
	ErrOldPasswordRequired   = errors.New("current password must be verified to change an adult account password")
	ErrEmptyPasswordHash     = errors.New("password hash cannot be empty")
	ErrAccountLocked         = errors.New("account is locked")
	ErrAccountDeactivated    = errors.New("account is deactivated")
	ErrEmailNotVerified      = errors.New("email address is not verified")
	ErrChildNotLinked        = errors.New("child is not linked to this parent")
	ErrStoryQuotaExhausted   = errors.New("monthly story generation quota exhausted")
	ErrCharacterQuotaReached = errors.New("character limit for subscription reached")
	ErrNegativeUsageMinutes  = errors.New("usage minutes cannot be negative")
)

// monthlyWindow is the rolling window bounding the story-generation quota.
const monthlyWindow = 30 * 24 * time.Hour

// Subscription captures a user's current plan and its expiry.
type Subscription struct {
	Tier      SubscriptionTier `json:"tier"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// UsageCounters tracks consumption against subscription limits.
type UsageCounters struct {
	CharactersCreated int       `json:"characters_created"`
	StoriesThisMonth  int       `json:"stories_this_month"`
	MonthlyResetAt    time.Time `json:"monthly_reset_at"`
}

// ChildRestrictions hold the per-child content and time limits. The defaults
// are derived from the child's age once, at profile creation, and do not
// change when the child has a birthday.
type ChildRestrictions struct {
	AllowedCategories []string  `json:"allowed_categories"`
	DailyLimitMinutes int       `json:"daily_limit_minutes"`
	MinutesUsedToday  int       `json:"minutes_used_today"`
	UsageDate         time.Time `json:"usage_date"`
}

// User represents a registered account: a parent, a child profile linked to a
// parent, or an administrator.
type User struct {
	ID                  uuid.UUID         `json:"id"`
	Email               string            `json:"email"`
	DisplayName         string            `json:"display_name"`
	HashedPassword      string            `json:"-"`
	Role                Role              `json:"role"`
	IsActive            bool              `json:"is_active"`
	EmailVerified       bool              `json:"email_verified"`
	FailedLoginAttempts int               `json:"-"`
	LockedUntil         *time.Time        `json:"-"`
	DateOfBirth         *time.Time        `json:"date_of_birth,omitempty"`
	Subscription        Subscription      `json:"subscription"`
	Usage               UsageCounters     `json:"usage"`
	ParentID            *uuid.UUID        `json:"parent_id,omitempty"`
	ChildIDs            []uuid.UUID       `json:"child_ids,omitempty"`
	Restrictions        *ChildRestrictions `json:"restrictions,omitempty"`
	Preferences         map[string]string `json:"preferences,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`

	eventRecorder
}

// NewUser creates a new adult account with the given email and display name.
// The email is trimmed and lowercased before validation. The caller is
// responsible for setting the hashed password before persisting the user.
func NewUser(email, displayName string, role Role) (*User, error) {
	if role == RoleChild {
		// Child profiles carry a parent linkage and age-derived defaults;
		// they are created through CreateChildProfile on the parent.
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	user := &User{
		ID:            uuid.New(),
		Email:         NormalizeEmail(email),
		DisplayName:   strings.TrimSpace(displayName),
		Role:          role,
		IsActive:      true,
		EmailVerified: false,
		Subscription:  Subscription{Tier: TierFree},
		Usage:         UsageCounters{MonthlyResetAt: now.Add(monthlyWindow)},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	user.record(user.ID, UserRegisteredPayload{Email: user.Email, Role: user.Role})
	return user, nil
}

// CreateChildProfile creates a child account linked to this parent. The
// child's daily time limit and allowed content categories are fixed from the
// child's age at creation time. The parent records a ChildAdded event and the
// returned child records its own creation event.
func (u *User) CreateChildProfile(name string, dateOfBirth time.Time) (*User, error) {
	if u.Role == RoleChild {
		return nil, ErrChildCannotHaveChild
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyDisplayName
	}

	now := time.Now().UTC()
	age := AgeAt(dateOfBirth, now)
	if age >= 18 {
		return nil, ErrChildTooOld
	}

	defaults := RestrictionDefaultsForAge(age)
	parentID := u.ID
	child := &User{
		ID:            uuid.New(),
		DisplayName:   name,
		Role:          RoleChild,
		IsActive:      true,
		EmailVerified: true, // child profiles have no email of their own
		DateOfBirth:   &dateOfBirth,
		Subscription:  u.Subscription,
		Usage:         UsageCounters{MonthlyResetAt: now.Add(monthlyWindow)},
		ParentID:      &parentID,
		Restrictions: &ChildRestrictions{
			AllowedCategories: defaults.AllowedCategories,
			DailyLimitMinutes: defaults.DailyLimitMinutes,
			UsageDate:         truncateToDay(now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	u.ChildIDs = append(u.ChildIDs, child.ID)
	u.UpdatedAt = now
	u.record(u.ID, ChildAddedPayload{ChildID: child.ID})
	child.record(child.ID, ChildProfileCreatedPayload{
		ParentID:          parentID,
		Age:               age,
		DailyLimitMinutes: defaults.DailyLimitMinutes,
	})
	return child, nil
}

// Validate checks the structural invariants of the account.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Role != RoleParent && u.Role != RoleChild && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	if u.DisplayName == "" {
		return ErrEmptyDisplayName
	}
	if u.Role == RoleChild {
		if len(u.ChildIDs) > 0 {
			return ErrChildCannotHaveChild
		}
		return nil
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// VerifyEmail marks the account's email address as verified. Verifying an
// already verified address is a no-op and records no event.
func (u *User) VerifyEmail() {
	if u.EmailVerified {
		return
	}
	u.EmailVerified = true
	u.touch()
	u.record(u.ID, EmailVerifiedPayload{})
}

// UpdateProfile changes the display name and, optionally, the date of birth.
// A child account may never be aged into adulthood this way.
func (u *User) UpdateProfile(displayName string, dateOfBirth *time.Time) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ErrEmptyDisplayName
	}
	if dateOfBirth != nil && u.Role == RoleChild {
		if AgeAt(*dateOfBirth, time.Now().UTC()) >= 18 {
			return ErrChildTooOld
		}
	}

	changed := false
	if u.DisplayName != displayName {
		u.DisplayName = displayName
		changed = true
	}
	if dateOfBirth != nil && (u.DateOfBirth == nil || !u.DateOfBirth.Equal(*dateOfBirth)) {
		u.DateOfBirth = dateOfBirth
		changed = true
	}
	if !changed {
		return nil
	}

	u.touch()
	u.record(u.ID, ProfileUpdatedPayload{DisplayName: u.DisplayName})
	return nil
}

// ChangePassword replaces the stored password hash. Adult accounts must have
// had their current password verified by the caller first; child profiles are
// parent-managed and exempt from that check.
func (u *User) ChangePassword(newHashedPassword string, oldPasswordVerified bool) error {
	if newHashedPassword == "" {
		return ErrEmptyPasswordHash
	}
	if u.Role != RoleChild && !oldPasswordVerified {
		return ErrOldPasswordRequired
	}

	u.HashedPassword = newHashedPassword
	u.touch()
	u.record(u.ID, PasswordChangedPayload{})
	return nil
}

// UpdateSubscription switches the account to a new tier and resets the
// monthly usage counters so the new quota applies immediately.
func (u *User) UpdateSubscription(tier SubscriptionTier, expiresAt *time.Time) error {
	if !isValidTier(tier) {
		return ErrInvalidSubscriptionTier
	}

	now := time.Now().UTC()
	u.Subscription = Subscription{Tier: tier, ExpiresAt: expiresAt}
	u.Usage.StoriesThisMonth = 0
	u.Usage.MonthlyResetAt = now.Add(monthlyWindow)
	u.touch()
	u.record(u.ID, SubscriptionUpdatedPayload{Tier: tier})
	return nil
}

// RemoveChild unlinks a child profile from this parent.
func (u *User) RemoveChild(childID uuid.UUID) error {
	for i, id := range u.ChildIDs {
		if id == childID {
			u.ChildIDs = append(u.ChildIDs[:i], u.ChildIDs[i+1:]...)
			u.touch()
			u.record(u.ID, ChildRemovedPayload{ChildID: childID})
			return nil
		}
	}
	return ErrChildNotLinked
}

// RecordLogin registers a successful authentication attempt. It fails if the
// account is locked, deactivated, or (for accounts with an email) unverified.
// On success the failed-attempt counter is reset.
func (u *User) RecordLogin() error {
	now := time.Now().UTC()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return ErrAccountLocked
	}
	if !u.IsActive {
		return ErrAccountDeactivated
	}
	if u.Role != RoleChild && !u.EmailVerified {
		return ErrEmailNotVerified
	}

	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.touch()
	u.record(u.ID, LoggedInPayload{})
	return nil
}

// RegisterFailedLogin increments the failed-attempt counter and locks the
// account for lockDuration once maxAttempts is reached.
func (u *User) RegisterFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	u.touch()
	u.record(u.ID, LoginFailedPayload{Attempts: u.FailedLoginAttempts})

	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		until := time.Now().UTC().Add(lockDuration)
		u.LockedUntil = &until
		u.record(u.ID, UserLockedPayload{Until: until})
	}
}

// Deactivate disables the account. Deactivating an inactive account is a no-op.
func (u *User) Deactivate() {
	if !u.IsActive {
		return
	}
	u.IsActive = false
	u.touch()
	u.record(u.ID, UserDeactivatedPayload{})
}

// Reactivate re-enables a previously deactivated account.
func (u *User) Reactivate() {
	if u.IsActive {
		return
	}
	u.IsActive = true
	u.touch()
	u.record(u.ID, UserReactivatedPayload{})
}

// TrackDailyUsage adds screen-time minutes to a child's daily accumulator,
// resetting it automatically when the calendar day has rolled over. It
// returns true when the child's daily limit is now exceeded.
func (u *User) TrackDailyUsage(minutes int) (bool, error) {
	if u.Role != RoleChild || u.Restrictions == nil {
		return false, ErrNotAChildAccount
	}
	if minutes < 0 {
		return false, ErrNegativeUsageMinutes
	}

	today := truncateToDay(time.Now().UTC())
	if !u.Restrictions.UsageDate.Equal(today) {
		u.Restrictions.UsageDate = today
		u.Restrictions.MinutesUsedToday = 0
	}
	u.Restrictions.MinutesUsedToday += minutes
	exceeded := u.Restrictions.MinutesUsedToday > u.Restrictions.DailyLimitMinutes
	u.touch()
	u.record(u.ID, DailyUsageTrackedPayload{
		MinutesUsedToday: u.Restrictions.MinutesUsedToday,
		LimitExceeded:    exceeded,
	})
	return exceeded, nil
}

// CanGenerateMoreStories reports whether the monthly story quota still has
// room. The counter window resets automatically once the reset date elapses.
func (u *User) CanGenerateMoreStories() bool {
	u.refreshMonthlyWindow()
	quota := u.Limits().MonthlyStoryQuota
	if quota < 0 {
		return true
	}
	return u.Usage.StoriesThisMonth < quota
}

// RecordStoryGenerated consumes one story from the monthly quota.
func (u *User) RecordStoryGenerated() error {
	if !u.CanGenerateMoreStories() {
		return ErrStoryQuotaExhausted
	}
	u.Usage.StoriesThisMonth++
	u.touch()
	u.record(u.ID, StoryQuotaConsumedPayload{StoriesThisMonth: u.Usage.StoriesThisMonth})
	return nil
}

// CanCreateMoreCharacters reports whether the subscription allows another
// character.
func (u *User) CanCreateMoreCharacters() bool {
	limit := u.Limits().MaxCharacters
	if limit < 0 {
		return true
	}
	return u.Usage.CharactersCreated < limit
}

// RecordCharacterCreated consumes one character slot.
func (u *User) RecordCharacterCreated() error {
	if !u.CanCreateMoreCharacters() {
		return ErrCharacterQuotaReached
	}
	u.Usage.CharactersCreated++
	u.touch()
	u.record(u.ID, CharacterSlotConsumedPayload{CharactersCreated: u.Usage.CharactersCreated})
	return nil
}

// Limits resolves the account's current subscription limits. An expired paid
// subscription falls back to the free tier.
func (u *User) Limits() SubscriptionLimits {
	tier := u.Subscription.Tier
	if u.Subscription.ExpiresAt != nil && time.Now().UTC().After(*u.Subscription.ExpiresAt) {
		tier = TierFree
	}
	return LimitsForTier(tier)
}

// SetPreference stores a validated preference value. Setting a key to its
// current value is a no-op.
func (u *User) SetPreference(key, value string) error {
	if err := ValidatePreference(key, value); err != nil {
		return err
	}
	if u.Preferences[key] == value {
		return nil
	}
	if u.Preferences == nil {
		u.Preferences = make(map[string]string)
	}
	u.Preferences[key] = value
	u.touch()
	u.record(u.ID, PreferenceSetPayload{Key: key, Value: value})
	return nil
}

// Age returns the user's current age in full years, or -1 when the date of
// birth is unknown.
func (u *User) Age() int {
	if u.DateOfBirth == nil {
		return -1
	}
	return AgeAt(*u.DateOfBirth, time.Now().UTC())
}

// IsLocked reports whether the account is currently locked out.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().UTC().Before(*u.LockedUntil)
}

// refreshMonthlyWindow rolls the story counter window forward when the reset
// date has elapsed.
func (u *User) refreshMonthlyWindow() {
	now := time.Now().UTC()
	if now.After(u.Usage.MonthlyResetAt) {
		u.Usage.StoriesThisMonth = 0
		u.Usage.MonthlyResetAt = now.Add(monthlyWindow)
	}
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AgeAt computes a person's age in full years at the given instant.
func AgeAt(dateOfBirth, at time.Time) int {
	age := at.Year() - dateOfBirth.Year()
	// Birthday has not happened yet this year.
	if at.YearDay() < dateOfBirth.YearDay() {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
