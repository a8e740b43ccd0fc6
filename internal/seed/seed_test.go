package seed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/seed"
	"github.com/example/bpo-portal/internal/testfixtures"
)

const fixture = `
users:
  - username: maria
    password: s3cret
    team: it
    position: Agent
  - username: lead
    password: s3cret
    staff: true
announcements:
  - title: Welcome
    content: Hello everyone
  - title: Patch night
    content: VPN down at 22:00
    team: IT
payrolls:
  - username: Maria
    month: 4
    year: 2024
    base_salary: "25000"
    deductions: "1500.50"
    net_pay: "23499.50"
    approved: true
  - username: maria
    month: 5
    year: 2024
    base_salary: "25000"
    net_pay: "25000"
`

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := seed.Parse(strings.NewReader("users:\n  - username: a\n    pasword: typo\n"))
	require.Error(t, err)

	empty, err := seed.Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty.Users)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	portal := testfixtures.NewPortal(t)
	services := portal.App.Services
	loader := seed.NewLoader(services.Users, services.Announcements, services.Payrolls, testfixtures.QuietLogger())

	file, err := seed.Parse(strings.NewReader(fixture))
	require.NoError(t, err)

	summary, err := loader.Load(t.Context(), file)
	require.NoError(t, err)
	require.Equal(t, seed.Summary{Users: 2, Announcements: 2, Payrolls: 2}, summary)

	users, err := services.Users.ListUsers(t.Context(), application.SystemPrincipal)
	require.NoError(t, err)
	require.Len(t, users, 2)

	var maria application.User
	for _, u := range users {
		if u.Username == "maria" {
			maria = u
		}
	}
	require.NotNil(t, maria.Team)
	require.Equal(t, "IT", *maria.Team)

	approved, err := services.Payrolls.ListApproved(t.Context(), maria.Principal(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, approved.Total)
	require.Equal(t, "23499.50", approved.Items[0].NetPay.StringFixed(2))

	pending, err := services.Payrolls.ListUnapproved(t.Context(), application.SystemPrincipal)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	feed, err := services.Announcements.VisibleTo(t.Context(), maria.Principal(), 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	session := portal.Login(t, "maria", "s3cret")
	require.NotNil(t, session)

	t.Run("rerun skips existing users", func(t *testing.T) {
		again, err := loader.Load(t.Context(), seed.File{Users: file.Users})
		require.NoError(t, err)
		require.Equal(t, seed.Summary{SkippedUsers: 2}, again)
	})

	t.Run("unknown payroll user fails", func(t *testing.T) {
		_, err := loader.Load(t.Context(), seed.File{Payrolls: []seed.Payroll{{Username: "ghost", Month: 1, Year: 2024, BaseSalary: "1", NetPay: "1"}}})
		require.ErrorContains(t, err, "unknown user")
	})
}
