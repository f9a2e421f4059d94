// Command portal-hash reads a password from stdin and prints the bcrypt hash to put
// under users[].passwordHash in the portal configuration.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"nmsportal/backend/libs/logging"
	"nmsportal/backend/services/portal-service/internal/password"
)

func main() {
	logger, err := logging.NewLogger("portal-hash")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		logger.Fatal("failed to read password from stdin", zap.Error(err))
	}

	hash, err := password.NewBcryptHasher(0).Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}
	fmt.Println(hash)
}
