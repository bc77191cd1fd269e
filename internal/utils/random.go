package utils

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

// GenerateRandomChineseName 返回姓和名两部分
func GenerateRandomChineseName() (string, string) {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname, name
}

var roles = []domain.Role{
	domain.RoleCoach,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomCoach 生成一个随机教练账号，邮箱使用拼音用户名
func GenerateRandomCoach(password string, emailDomainName string) (*domain.Coach, error) {
	surname, name := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(surname + name)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.Coach{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     surname + name,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}, nil
}

// 评分范围和原始球员数据一致，0 到 maxRating
const maxRating = 10

// GenerateRandomPlayer 生成一名三项能力评分随机的球员，名字使用拼音
func GenerateRandomPlayer() *domain.Player {
	surname, name := GenerateRandomChineseName()

	player := &domain.Player{
		ID:        uuid.NewString(),
		FirstName: pinyinName(name),
		LastName:  pinyinName(surname),
		Ratings:   make(map[domain.Skill]int, len(domain.Skills)),
	}
	for _, skill := range domain.Skills {
		player.Ratings[skill] = rand.Intn(maxRating + 1)
	}

	return player
}

func pinyinName(chinese string) string {
	name := ""
	for _, py := range pinyin.LazyConvert(chinese, nil) {
		name += py
	}
	if name == "" {
		return name
	}
	// 首字母大写
	return string(name[0]-'a'+'A') + name[1:]
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
