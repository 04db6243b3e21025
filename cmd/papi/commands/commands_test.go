package commands_test

import (
	"testing"

	"github.com/pressroom-io/papi/cmd/papi/commands"
	"github.com/stretchr/testify/assert"
)

func subcommandNames(t *testing.T, names []string, got []string) {
	t.Helper()

	for _, name := range names {
		assert.Contains(t, got, name)
	}
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
}

func TestNewUsersCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewUsersCommand()
	assert.Equal(t, "users", cmd.Use)
	assert.Equal(t, []string{"user"}, cmd.Aliases)

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "show", "current", "update", "lock", "unlock"}, names)
}

func TestNewContentCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewContentCommand()
	assert.Equal(t, "content", cmd.Use)

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "show", "create", "update", "delete", "deploy"}, names)
}

func TestNewGroupsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewGroupsCommand()

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "show", "create", "delete", "members", "add-member", "remove-member"}, names)
}

func TestNewTagsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTagsCommand()

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "show", "create", "delete", "children", "for-content", "assign", "unassign"}, names)
}

func TestNewEnvCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewEnvCommand()

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "set", "unset", "replace", "clear"}, names)
}

func TestNewServersCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewServersCommand()
	assert.Equal(t, "servers", cmd.Use)

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list", "add", "use", "remove"}, names)
}

func TestNewAuditCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAuditCommand()

	names := make([]string, 0)
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	subcommandNames(t, []string{"list"}, names)
}
