package orchestrators

import (
	"context"
	"testing"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
)

func TestExecuteSeedDemo_Idempotent(t *testing.T) {
	accounts := newMockAccountStore()
	members := newMockMemberStore()
	trainers := newMockTrainerStore()
	classes := newMockClassStore()
	equipmentStore := newMockEquipmentStore()
	deps := SeedDemoDeps{
		AccountStore:   accounts,
		MemberStore:    members,
		TrainerStore:   trainers,
		ClassStore:     classes,
		EquipmentStore: equipmentStore,
		PaymentStore:   &mockPaymentStore{members: members},
		GenerateID:     sequentialIDs(),
		Now:            fixedNow,
	}

	seeded, err := ExecuteSeedDemo(context.Background(), deps)
	if err != nil || !seeded {
		t.Fatalf("first run: seeded=%v err=%v", seeded, err)
	}

	admin, err := accounts.GetByEmail(context.Background(), demoAdminEmail)
	if err != nil || admin.Role != account.RoleAdmin {
		t.Fatalf("admin = %+v, err %v", admin, err)
	}
	if err := admin.CheckPassword(DemoPassword); err != nil {
		t.Errorf("demo password: %v", err)
	}
	if len(trainers.trainers) != len(demoTrainers) || len(members.members) != len(demoMembers) {
		t.Errorf("trainers = %d, members = %d", len(trainers.trainers), len(members.members))
	}
	statuses := map[string]int{}
	for _, m := range members.members {
		statuses[m.Status]++
	}
	if statuses[member.StatusActive] != 2 || statuses[member.StatusPending] != 1 {
		t.Errorf("statuses = %v", statuses)
	}
	for _, c := range classes.classes {
		if !c.IsUpcoming(fixedTime) {
			t.Errorf("class %s is not upcoming", c.Name)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("class %s: %v", c.Name, err)
		}
	}
	if len(classes.classes) != 3 || len(equipmentStore.items) != len(demoEquipment) {
		t.Errorf("classes = %d, equipment = %d", len(classes.classes), len(equipmentStore.items))
	}

	seeded, err = ExecuteSeedDemo(context.Background(), deps)
	if err != nil || seeded {
		t.Fatalf("second run: seeded=%v err=%v", seeded, err)
	}
	if len(members.members) != len(demoMembers) {
		t.Error("second run created more members")
	}
}

func TestDemoClassesDoNotOverlapPerTrainer(t *testing.T) {
	classes := newMockClassStore()
	members := newMockMemberStore()
	_, err := ExecuteSeedDemo(context.Background(), SeedDemoDeps{
		AccountStore: newMockAccountStore(), MemberStore: members, TrainerStore: newMockTrainerStore(),
		ClassStore: classes, EquipmentStore: newMockEquipmentStore(), PaymentStore: &mockPaymentStore{members: members},
		GenerateID: sequentialIDs(), Now: fixedNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	var all []gymclass.Class
	for _, c := range classes.classes {
		all = append(all, c)
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].TrainerID == all[j].TrainerID && all[i].Overlaps(all[j]) {
				t.Errorf("%s overlaps %s", all[i].Name, all[j].Name)
			}
		}
	}
}
