package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func birthDateForAge(age int) time.Time {
	// Noon on the birthday `age` years ago keeps YearDay comparisons stable.
	now := time.Now().UTC()
	return time.Date(now.Year()-age, now.Month(), now.Day(), 12, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Parent@Example.COM ", "Dana", RoleParent)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Email != "parent@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if !user.IsActive || user.EmailVerified {
		t.Errorf("Expected active, unverified account, got active=%v verified=%v", user.IsActive, user.EmailVerified)
	}
	if user.Subscription.Tier != TierFree {
		t.Errorf("Expected free tier, got %s", user.Subscription.Tier)
	}

	events := user.DomainEvents()
	if len(events) != 1 || events[0].Kind != EventUserRegistered {
		t.Fatalf("Expected single %s event, got %v", EventUserRegistered, events)
	}

	if _, err := NewUser("not-an-email", "Dana", RoleParent); err != ErrInvalidEmail {
		t.Errorf("Expected ErrInvalidEmail, got %v", err)
	}
	if _, err := NewUser("", "Dana", RoleParent); err != ErrEmptyEmail {
		t.Errorf("Expected ErrEmptyEmail, got %v", err)
	}
	if _, err := NewUser("a@b.com", "", RoleParent); err != ErrEmptyDisplayName {
		t.Errorf("Expected ErrEmptyDisplayName, got %v", err)
	}
	if _, err := NewUser("a@b.com", "Kid", RoleChild); err != ErrInvalidRole {
		t.Errorf("Expected ErrInvalidRole for direct child creation, got %v", err)
	}
}

func TestCreateChildProfileAgeDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		age         int
		wantMinutes int
	}{
		{4, 30},
		{6, 30},
		{7, 60},
		{10, 60},
		{11, 120},
		{14, 120},
	}

	for _, tc := range tests {
		parent, err := NewUser("parent@example.com", "Dana", RoleParent)
		if err != nil {
			t.Fatalf("NewUser: %v", err)
		}
		child, err := parent.CreateChildProfile("Robin", birthDateForAge(tc.age))
		if err != nil {
			t.Fatalf("CreateChildProfile(age %d): %v", tc.age, err)
		}
		if child.Restrictions.DailyLimitMinutes != tc.wantMinutes {
			t.Errorf("age %d: expected %d daily minutes, got %d",
				tc.age, tc.wantMinutes, child.Restrictions.DailyLimitMinutes)
		}
		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("age %d: child not linked to parent", tc.age)
		}
		if len(parent.ChildIDs) != 1 || parent.ChildIDs[0] != child.ID {
			t.Errorf("age %d: parent not linked to child", tc.age)
		}
	}
}

func TestCreateChildProfileRestrictedCategories(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	young, err := parent.CreateChildProfile("Sam", birthDateForAge(5))
	if err != nil {
		t.Fatalf("CreateChildProfile: %v", err)
	}
	for _, category := range young.Restrictions.AllowedCategories {
		if category == "mystery" || category == "adventure" {
			t.Errorf("young child should not have category %q", category)
		}
	}

	older, err := parent.CreateChildProfile("Alex", birthDateForAge(9))
	if err != nil {
		t.Fatalf("CreateChildProfile: %v", err)
	}
	if len(older.Restrictions.AllowedCategories) <= len(young.Restrictions.AllowedCategories) {
		t.Error("older child should have a wider category list")
	}
}

func TestChildCannotHaveChildren(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	child, err := parent.CreateChildProfile("Robin", birthDateForAge(8))
	if err != nil {
		t.Fatalf("CreateChildProfile: %v", err)
	}

	if _, err := child.CreateChildProfile("Nested", birthDateForAge(4)); err != ErrChildCannotHaveChild {
		t.Errorf("Expected ErrChildCannotHaveChild, got %v", err)
	}

	if _, err := parent.CreateChildProfile("Grown", birthDateForAge(18)); err != ErrChildTooOld {
		t.Errorf("Expected ErrChildTooOld, got %v", err)
	}
}

func TestVerifyEmailIdempotent(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	user.ClearDomainEvents()

	user.VerifyEmail()
	if !user.EmailVerified {
		t.Fatal("Expected email to be verified")
	}
	if len(user.DomainEvents()) != 1 {
		t.Fatalf("Expected one event, got %d", len(user.DomainEvents()))
	}

	user.VerifyEmail()
	if len(user.DomainEvents()) != 1 {
		t.Errorf("Verifying an already verified email must not emit an event, got %d", len(user.DomainEvents()))
	}
}

func TestUpdateProfileBlocksAdultChild(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	child, _ := parent.CreateChildProfile("Robin", birthDateForAge(8))

	adultDOB := birthDateForAge(18)
	if err := child.UpdateProfile("Robin", &adultDOB); err != ErrChildTooOld {
		t.Errorf("Expected ErrChildTooOld, got %v", err)
	}

	newDOB := birthDateForAge(9)
	if err := child.UpdateProfile("Robin Jr", &newDOB); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if child.DisplayName != "Robin Jr" {
		t.Errorf("Expected updated display name, got %q", child.DisplayName)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	if err := parent.ChangePassword("new-hash", false); err != ErrOldPasswordRequired {
		t.Errorf("Expected ErrOldPasswordRequired for adult without verification, got %v", err)
	}
	if err := parent.ChangePassword("new-hash", true); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if parent.HashedPassword != "new-hash" {
		t.Errorf("Expected stored hash, got %q", parent.HashedPassword)
	}

	child, _ := parent.CreateChildProfile("Robin", birthDateForAge(8))
	if err := child.ChangePassword("kid-hash", false); err != nil {
		t.Errorf("Child password change should not require verification, got %v", err)
	}
	if err := child.ChangePassword("", false); err != ErrEmptyPasswordHash {
		t.Errorf("Expected ErrEmptyPasswordHash, got %v", err)
	}
}

func TestUpdateSubscriptionResetsCounters(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	user.Usage.StoriesThisMonth = 7

	if err := user.UpdateSubscription(TierPremium, nil); err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}
	if user.Usage.StoriesThisMonth != 0 {
		t.Errorf("Expected monthly counter reset, got %d", user.Usage.StoriesThisMonth)
	}
	if user.Subscription.Tier != TierPremium {
		t.Errorf("Expected premium tier, got %s", user.Subscription.Tier)
	}

	if err := user.UpdateSubscription("platinum", nil); err != ErrInvalidSubscriptionTier {
		t.Errorf("Expected ErrInvalidSubscriptionTier, got %v", err)
	}
}

func TestRemoveChild(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	child, _ := parent.CreateChildProfile("Robin", birthDateForAge(8))

	if err := parent.RemoveChild(uuid.New()); err != ErrChildNotLinked {
		t.Errorf("Expected ErrChildNotLinked, got %v", err)
	}
	if err := parent.RemoveChild(child.ID); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(parent.ChildIDs) != 0 {
		t.Errorf("Expected no linked children, got %v", parent.ChildIDs)
	}
}

func TestRecordLogin(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)

	if err := user.RecordLogin(); err != ErrEmailNotVerified {
		t.Errorf("Expected ErrEmailNotVerified, got %v", err)
	}

	user.VerifyEmail()
	user.FailedLoginAttempts = 3
	if err := user.RecordLogin(); err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	if user.FailedLoginAttempts != 0 {
		t.Errorf("Expected failure counter reset, got %d", user.FailedLoginAttempts)
	}

	user.Deactivate()
	if err := user.RecordLogin(); err != ErrAccountDeactivated {
		t.Errorf("Expected ErrAccountDeactivated, got %v", err)
	}
	user.Reactivate()

	until := time.Now().UTC().Add(time.Hour)
	user.LockedUntil = &until
	if err := user.RecordLogin(); err != ErrAccountLocked {
		t.Errorf("Expected ErrAccountLocked, got %v", err)
	}
}

func TestRegisterFailedLoginLocksAccount(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	user.VerifyEmail()
	user.ClearDomainEvents()

	for i := 0; i < 4; i++ {
		user.RegisterFailedLogin(5, 15*time.Minute)
		if user.IsLocked() {
			t.Fatalf("Account locked after only %d attempts", i+1)
		}
	}
	user.RegisterFailedLogin(5, 15*time.Minute)
	if !user.IsLocked() {
		t.Fatal("Expected account to be locked after 5 attempts")
	}

	events := user.DomainEvents()
	last := events[len(events)-1]
	if last.Kind != EventUserLocked {
		t.Errorf("Expected final %s event, got %s", EventUserLocked, last.Kind)
	}
	if err := user.RecordLogin(); err != ErrAccountLocked {
		t.Errorf("Expected ErrAccountLocked, got %v", err)
	}
}

func TestTrackDailyUsage(t *testing.T) {
	t.Parallel()

	parent, _ := NewUser("parent@example.com", "Dana", RoleParent)
	child, _ := parent.CreateChildProfile("Robin", birthDateForAge(5))

	if _, err := parent.TrackDailyUsage(10); err != ErrNotAChildAccount {
		t.Errorf("Expected ErrNotAChildAccount, got %v", err)
	}
	if _, err := child.TrackDailyUsage(-1); err != ErrNegativeUsageMinutes {
		t.Errorf("Expected ErrNegativeUsageMinutes, got %v", err)
	}

	exceeded, err := child.TrackDailyUsage(20)
	if err != nil || exceeded {
		t.Fatalf("Expected usage within limit, got exceeded=%v err=%v", exceeded, err)
	}
	exceeded, err = child.TrackDailyUsage(15)
	if err != nil {
		t.Fatalf("TrackDailyUsage: %v", err)
	}
	if !exceeded {
		t.Error("Expected 35 minutes to exceed the 30 minute limit")
	}

	// Simulate a date rollover: usage resets for the new day.
	child.Restrictions.UsageDate = child.Restrictions.UsageDate.AddDate(0, 0, -1)
	exceeded, err = child.TrackDailyUsage(5)
	if err != nil {
		t.Fatalf("TrackDailyUsage: %v", err)
	}
	if exceeded || child.Restrictions.MinutesUsedToday != 5 {
		t.Errorf("Expected rollover reset to 5 minutes, got %d (exceeded=%v)",
			child.Restrictions.MinutesUsedToday, exceeded)
	}
}

func TestMonthlyStoryQuota(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)

	quota := user.Limits().MonthlyStoryQuota
	for i := 0; i < quota; i++ {
		if err := user.RecordStoryGenerated(); err != nil {
			t.Fatalf("RecordStoryGenerated #%d: %v", i+1, err)
		}
	}
	if user.CanGenerateMoreStories() {
		t.Error("Expected quota to be exhausted")
	}
	if err := user.RecordStoryGenerated(); err != ErrStoryQuotaExhausted {
		t.Errorf("Expected ErrStoryQuotaExhausted, got %v", err)
	}

	// Once the reset date elapses the window rolls over and the quota is
	// available again.
	user.Usage.MonthlyResetAt = time.Now().UTC().Add(-time.Hour)
	if !user.CanGenerateMoreStories() {
		t.Error("Expected quota to reset after the reset date elapsed")
	}
	if user.Usage.StoriesThisMonth != 0 {
		t.Errorf("Expected counter reset to 0, got %d", user.Usage.StoriesThisMonth)
	}
}

func TestCharacterQuota(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	limit := user.Limits().MaxCharacters
	for i := 0; i < limit; i++ {
		if err := user.RecordCharacterCreated(); err != nil {
			t.Fatalf("RecordCharacterCreated #%d: %v", i+1, err)
		}
	}
	if user.CanCreateMoreCharacters() {
		t.Error("Expected character quota to be reached")
	}
	if err := user.RecordCharacterCreated(); err != ErrCharacterQuotaReached {
		t.Errorf("Expected ErrCharacterQuotaReached, got %v", err)
	}

	// The family tier is unlimited.
	if err := user.UpdateSubscription(TierFamily, nil); err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}
	if !user.CanCreateMoreCharacters() {
		t.Error("Expected family tier to allow more characters")
	}
}

func TestExpiredSubscriptionFallsBackToFree(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	expired := time.Now().UTC().Add(-24 * time.Hour)
	if err := user.UpdateSubscription(TierPremium, &expired); err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}
	if got := user.Limits(); got != LimitsForTier(TierFree) {
		t.Errorf("Expected free limits for expired subscription, got %+v", got)
	}
}

func TestSetPreference(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)

	if err := user.SetPreference("language", "de"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if user.Preferences["language"] != "de" {
		t.Errorf("Expected stored preference, got %q", user.Preferences["language"])
	}

	user.ClearDomainEvents()
	if err := user.SetPreference("language", "de"); err != nil {
		t.Errorf("Setting the same value should be a no-op, got %v", err)
	}
	if len(user.DomainEvents()) != 0 {
		t.Error("No-op preference set must not emit an event")
	}

	if err := user.SetPreference("favorite_color", "blue"); err == nil ||
		!strings.Contains(err.Error(), "unknown preference key") {
		t.Errorf("Expected unknown key error, got %v", err)
	}
	if err := user.SetPreference("font_size", "64"); err == nil {
		t.Error("Expected range error for font_size 64")
	}
	if err := user.SetPreference("font_size", "16"); err != nil {
		t.Errorf("Expected no error for font_size 16, got %v", err)
	}
	if err := user.SetPreference("theme", "neon"); err == nil {
		t.Error("Expected enum error for theme neon")
	}
}

func TestEventOrderMatchesMutationOrder(t *testing.T) {
	t.Parallel()

	user, _ := NewUser("parent@example.com", "Dana", RoleParent)
	user.VerifyEmail()
	_ = user.SetPreference("theme", "dark")
	user.Deactivate()

	kinds := make([]EventKind, 0, 4)
	for _, e := range user.DomainEvents() {
		kinds = append(kinds, e.Kind)
	}
	want := []EventKind{EventUserRegistered, EventUserEmailVerified, EventPreferenceSet, EventUserDeactivated}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %d events, got %d (%v)", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestLimitsForTierUnknownTier(t *testing.T) {
	t.Parallel()

	if got := LimitsForTier("platinum"); got != LimitsForTier(TierFree) {
		t.Errorf("Unknown tier should fall back to free limits, got %+v", got)
	}
}
