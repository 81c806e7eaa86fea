package services

import (
	"testing"
	"time"

	"ledgerly/internal/models"
	"ledgerly/internal/oauth"
	"ledgerly/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser(" Alice@Example.com ", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be assigned")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email alice@example.com, got %s", user.Email)
		}
		if user.FirstName != "Alice" {
			t.Errorf("expected first name Alice, got %s", user.FirstName)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
			t.Error("expected password to be stored as a bcrypt hash")
		}
	})

	t.Run("creates_personal_space", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("space@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		var space models.Space
		if err := db.Where("owner_id = ? AND type = ?", user.ID, models.SpaceTypePersonal).First(&space).Error; err != nil {
			t.Fatalf("expected personal space: %v", err)
		}
		var count int64
		db.Model(&models.SpaceMember{}).Where("space_id = ? AND user_id = ?", space.ID, user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected owner membership, got %d rows", count)
		}
	})

	t.Run("sanitizes_names", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("xss@example.com", "password123", "<script>alert(1)</script>Bob", "")
		testutil.AssertNoError(t, err)
		if user.FirstName != "Bob" {
			t.Errorf("expected sanitized first name Bob, got %q", user.FirstName)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("DUP@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "password123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("nopass@example.com", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUserWithEmail(t, db, "find@example.com")

	t.Run("found", func(t *testing.T) {
		found, err := svc.GetUserByEmail("FIND@example.com")
		testutil.AssertNoError(t, err)
		if found.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, found.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetUserByEmail("missing@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
		db.Model(inactive).Update("is_active", false)

		_, err := svc.GetUserByEmail("inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	found, err := svc.GetUserByID(user.ID)
	testutil.AssertNoError(t, err)
	if found.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, found.Email)
	}

	_, err = svc.GetUserByID(missingID)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	_, err = svc.GetUserByID("42")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	if !svc.VerifyPassword(user, testutil.TestPassword) {
		t.Error("expected correct password to verify")
	}
	if svc.VerifyPassword(user, "wrong-password") {
		t.Error("expected wrong password to fail")
	}
	if svc.VerifyPassword(&models.User{}, "") {
		t.Error("expected user without password to fail")
	}
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_counter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("failed_login_attempts", 3)

		got, err := svc.AttemptLogin(user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if got.LastLoginAt == nil {
			t.Error("expected last login to be recorded")
		}

		var stored models.User
		db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 0 {
			t.Errorf("expected counter reset, got %d", stored.FailedLoginAttempts)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("ghost@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_five_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < maxFailedLoginAttempts; i++ {
			_, err := svc.AttemptLogin(user.Email, "wrong-password")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		_, err := svc.AttemptLogin(user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		var stored models.User
		db.First(&stored, "id = ?", user.ID)
		if stored.LockedUntil == nil || !stored.LockedUntil.After(time.Now()) {
			t.Error("expected locked_until in the future")
		}
	})

	t.Run("expired_lock", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Updates(map[string]interface{}{
			"failed_login_attempts": maxFailedLoginAttempts,
			"locked_until":          time.Now().Add(-time.Minute),
		})

		_, err := svc.AttemptLogin(user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc123"))

	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected hash abc123, got %q", hash)
	}

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, ""))
	hash, _ = svc.GetRefreshTokenHash(user.ID)
	if hash != "" {
		t.Errorf("expected cleared hash, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash(missingID, "abc")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("partial", func(t *testing.T) {
		updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{FirstName: strPtr("Jane")})
		testutil.AssertNoError(t, err)
		if updated.FirstName != "Jane" {
			t.Errorf("expected first name Jane, got %s", updated.FirstName)
		}
		if updated.LastName != user.LastName {
			t.Errorf("expected last name unchanged, got %s", updated.LastName)
		}
	})

	t.Run("no_changes", func(t *testing.T) {
		updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{})
		testutil.AssertNoError(t, err)
		if updated.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, updated.ID)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		_, err := svc.UpdateProfile(missingID, ProfileUpdate{FirstName: strPtr("X")})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "outstanding"))

		err := svc.ChangePassword(user.ID, testutil.TestPassword, "new-password-1")
		testutil.AssertNoError(t, err)

		updated, _ := svc.GetUserByID(user.ID)
		if !svc.VerifyPassword(updated, "new-password-1") {
			t.Error("expected new password to verify")
		}
		if updated.RefreshTokenHash != "" {
			t.Error("expected refresh token hash to be cleared")
		}
	})

	t.Run("wrong_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.ChangePassword(user.ID, "wrong-password", "new-password-1")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("too_short", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.ChangePassword(user.ID, testutil.TestPassword, "short")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("google_only_user_sets_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("password", "")

		err := svc.ChangePassword(user.ID, "", "first-password")
		testutil.AssertNoError(t, err)
	})
}

func googleProfile(subject, email string, verified bool) *oauth.Profile {
	return &oauth.Profile{
		Subject:       subject,
		Email:         email,
		EmailVerified: verified,
		GivenName:     "Grace",
		FamilyName:    "Hopper",
		Picture:       "https://example.com/grace.png",
	}
}

func TestFindOrCreateGoogleUser(t *testing.T) {
	t.Run("creates_new_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, created, err := svc.FindOrCreateGoogleUser(googleProfile("g-1", "grace@example.com", true))
		testutil.AssertNoError(t, err)

		if !created {
			t.Error("expected a new user")
		}
		if user.HasPassword() {
			t.Error("expected Google user without password")
		}
		if !user.GoogleLinked() || *user.GoogleID != "g-1" {
			t.Error("expected google id g-1")
		}
		if !user.IsEmailVerified {
			t.Error("expected verified email")
		}

		var count int64
		db.Model(&models.Space{}).Where("owner_id = ? AND type = ?", user.ID, models.SpaceTypePersonal).Count(&count)
		if count != 1 {
			t.Errorf("expected personal space, got %d", count)
		}
	})

	t.Run("finds_by_google_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		first, _, err := svc.FindOrCreateGoogleUser(googleProfile("g-2", "same@example.com", true))
		testutil.AssertNoError(t, err)

		second, created, err := svc.FindOrCreateGoogleUser(googleProfile("g-2", "changed@example.com", true))
		testutil.AssertNoError(t, err)
		if created {
			t.Error("expected existing user")
		}
		if second.ID != first.ID {
			t.Errorf("expected user %s, got %s", first.ID, second.ID)
		}
	})

	t.Run("links_verified_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		existing := testutil.CreateTestUserWithEmail(t, db, "grace@example.com")

		user, created, err := svc.FindOrCreateGoogleUser(googleProfile("g-3", "grace@example.com", true))
		testutil.AssertNoError(t, err)

		if created {
			t.Error("expected account linking, not creation")
		}
		if user.ID != existing.ID {
			t.Errorf("expected user %s, got %s", existing.ID, user.ID)
		}
		if !user.GoogleLinked() {
			t.Error("expected google id to be linked")
		}
		if user.AvatarURL != "https://example.com/grace.png" {
			t.Errorf("expected avatar from Google, got %q", user.AvatarURL)
		}
	})

	t.Run("unverified_email_conflict", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWithEmail(t, db, "grace@example.com")

		_, _, err := svc.FindOrCreateGoogleUser(googleProfile("g-4", "grace@example.com", false))
		testutil.AssertAppError(t, err, "EMAIL_NOT_VERIFIED")
	})

	t.Run("email_linked_to_other_google_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, _, err := svc.FindOrCreateGoogleUser(googleProfile("g-5", "grace@example.com", true))
		testutil.AssertNoError(t, err)

		_, _, err = svc.FindOrCreateGoogleUser(googleProfile("g-6", "grace@example.com", true))
		testutil.AssertAppError(t, err, "GOOGLE_ALREADY_LINKED")
	})

	t.Run("incomplete_profile", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, _, err := svc.FindOrCreateGoogleUser(&oauth.Profile{Email: "x@example.com"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.FindOrCreateGoogleUser(nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestLinkGoogleAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		linked, err := svc.LinkGoogleAccount(user.ID, googleProfile("g-10", "other@example.com", true))
		testutil.AssertNoError(t, err)
		if !linked.GoogleLinked() || *linked.GoogleID != "g-10" {
			t.Error("expected google id g-10")
		}
	})

	t.Run("already_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.LinkGoogleAccount(user.ID, googleProfile("g-11", "a@example.com", true))
		testutil.AssertNoError(t, err)

		_, err = svc.LinkGoogleAccount(user.ID, googleProfile("g-12", "a@example.com", true))
		testutil.AssertAppError(t, err, "GOOGLE_ALREADY_LINKED")
	})

	t.Run("google_id_taken", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		first := testutil.CreateTestUser(t, db)
		second := testutil.CreateTestUser(t, db)

		_, err := svc.LinkGoogleAccount(first.ID, googleProfile("g-13", "a@example.com", true))
		testutil.AssertNoError(t, err)

		_, err = svc.LinkGoogleAccount(second.ID, googleProfile("g-13", "a@example.com", true))
		testutil.AssertAppError(t, err, "GOOGLE_ALREADY_LINKED")
	})
}

func TestUnlinkGoogleAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		_, err := svc.LinkGoogleAccount(user.ID, googleProfile("g-20", "a@example.com", true))
		testutil.AssertNoError(t, err)

		unlinked, err := svc.UnlinkGoogleAccount(user.ID)
		testutil.AssertNoError(t, err)
		if unlinked.GoogleLinked() {
			t.Error("expected google id to be cleared")
		}
	})

	t.Run("not_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UnlinkGoogleAccount(user.ID)
		testutil.AssertAppError(t, err, "GOOGLE_NOT_LINKED")
	})

	t.Run("password_required", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, _, err := svc.FindOrCreateGoogleUser(googleProfile("g-21", "only@example.com", true))
		testutil.AssertNoError(t, err)

		_, err = svc.UnlinkGoogleAccount(user.ID)
		testutil.AssertAppError(t, err, "PASSWORD_REQUIRED")
	})
}
