package pgcmd

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// CreateUserSQL returns the CREATE USER statement for user. The role gets
// CREATEDB and LOGIN, plus SUPERUSER when superuser is set.
func CreateUserSQL(user, password string, superuser bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE USER ")
	sb.WriteString(pgx.Identifier{user}.Sanitize())
	sb.WriteString(" WITH CREATEDB LOGIN ")
	if superuser {
		sb.WriteString("SUPERUSER ")
	}
	sb.WriteString("PASSWORD ")
	sb.WriteString(quoteLiteral(password))
	sb.WriteString(";")

	return checkStatement(sb.String())
}

// SetSuperuserSQL returns the ALTER USER statement granting (grant=true) or
// revoking SUPERUSER for user.
func SetSuperuserSQL(user string, grant bool) (string, error) {
	attr := "NOSUPERUSER"
	if grant {
		attr = "SUPERUSER"
	}
	return checkStatement(fmt.Sprintf("ALTER USER %s WITH %s;", pgx.Identifier{user}.Sanitize(), attr))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// checkStatement makes sure sql parses as exactly one statement.
func checkStatement(sql string) (string, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return "", fmt.Errorf("generated SQL does not parse: %w", err)
	}
	if n := len(result.GetStmts()); n != 1 {
		return "", fmt.Errorf("generated SQL has %d statements, expected 1", n)
	}
	return sql, nil
}
